package core

// Color represents a foreground color for a screen cell.
// Front-ends map it to whatever their terminal supports.
type Color uint8

// Colors used by the race: racers, platforms and the goal.
const (
	ColorDefault Color = iota
	ColorRed           // Player 1
	ColorBlue          // Player 2
	ColorBrown         // platform body
	ColorGreen         // platform grass top
	ColorGold          // goal
	ColorWhite
	ColorGray
)

// PlayerColor returns the racer color: red for Player 1, blue for Player 2.
func PlayerColor(p PlayerID) Color {
	if p == Player2 {
		return ColorBlue
	}
	return ColorRed
}
