package bot

// DefaultScript climbs toward the goal one platform at a time.
//
// On the first run it ranks every platform by how many jumps it is from the
// goal and keeps the table in memory.dist. While grounded it picks the
// reachable platform closest to the goal, walks to a launch spot just outside
// that platform's span and jumps from there. In the air it keeps clear of
// the target's underside until its head is level with it, then steers onto
// the top.
const DefaultScript = `
reach := 115.0
max_gap := 100.0
margin := 12.0
far := 1000

w := self.w
h := self.h
feet := self.y + h
cx := self.x + w / 2.0
n := len(platforms)

spans := func(a, b) {
	return a.x < b.x + b.w && a.x + a.w > b.x
}

direct := func(p) {
	if !spans(p, goal) || goal.y >= p.y || goal.y + goal.h <= p.y - h - reach {
		return false
	}
	for _, q in platforms {
		if q.y < p.y && q.y + q.h > goal.y + goal.h && spans(q, goal) {
			return false
		}
	}
	return true
}

edge := func(p, q) {
	if q.y >= p.y || p.y - q.y > reach {
		return false
	}
	gap := q.x - (p.x + p.w)
	if p.x - (q.x + q.w) > gap {
		gap = p.x - (q.x + q.w)
	}
	if gap > 0.0 {
		return gap <= max_gap
	}
	// Overlapping spans need room to launch beside the upper platform.
	return p.x - w / 2.0 <= q.x - w - margin || p.x + p.w + w / 2.0 >= q.x + q.w + w + margin
}

if memory.dist == undefined {
	d := []
	for _, p in platforms {
		if direct(p) {
			d = append(d, 0)
		} else {
			d = append(d, far)
		}
	}
	adj := []
	for i := 0; i < n; i++ {
		row := []
		for j := 0; j < n; j++ {
			row = append(row, edge(platforms[i], platforms[j]))
		}
		adj = append(adj, row)
	}
	changed := true
	for changed {
		changed = false
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if adj[i][j] && d[j] + 1 < d[i] {
					d[i] = d[j] + 1
					changed = true
				}
			}
		}
	}
	memory.dist = d
}
dist := memory.dist

if self.grounded {
	memory.support = -1
	memory.target = -1
	for i, p in platforms {
		if feet - p.y < 0.5 && p.y - feet < 0.5 && self.x < p.x + p.w && self.x + w > p.x {
			memory.support = i
		}
	}
	s := memory.support
	if s >= 0 && dist[s] == 0 {
		memory.target = -2
	} else if s >= 0 {
		best := far
		best_dx := 1000000.0
		for j, q in platforms {
			if edge(platforms[s], q) {
				dx := q.x + q.w / 2.0 - cx
				if dx < 0.0 {
					dx = -dx
				}
				if dist[j] < best || (dist[j] == best && dx < best_dx) {
					best = dist[j]
					best_dx = dx
					memory.target = j
				}
			}
		}
	}
}

steer := func() {
	t := memory.target
	if t < 0 {
		tx := goal.x + goal.w / 2.0
		up := t == -2 && self.grounded && cx - tx < goal.w / 2.0 && tx - cx < goal.w / 2.0
		return [cx > tx + 2.0, cx < tx - 2.0, up]
	}

	tp := platforms[t]
	tl := tp.x
	tr := tp.x + tp.w
	tcx := tl + tp.w / 2.0
	x := self.x

	if self.grounded {
		sp := platforms[memory.support]
		lx := tl - w - margin
		if sp.x + sp.w - w / 2.0 < lx {
			lx = sp.x + sp.w - w / 2.0
		}
		rx := tr + margin
		if sp.x - w / 2.0 > rx {
			rx = sp.x - w / 2.0
		}
		lok := tl - w - margin >= sp.x - w / 2.0 && lx >= 0.0
		rok := tr + margin <= sp.x + sp.w - w / 2.0 && rx <= world.w - w

		from_left := false
		if x + w <= tl {
			from_left = true
		} else if x < tr {
			from_left = lok && (!rok || x + w / 2.0 - tl < tr - x - w / 2.0)
		}

		if from_left {
			if x >= lx - 6.0 && x + w <= tl {
				return [false, true, true]
			}
			return [x > lx + 2.0, x < lx - 2.0, false]
		}
		if x <= rx + 6.0 && x >= tr {
			return [true, false, true]
		}
		return [x > rx + 2.0, x < rx - 2.0, false]
	}

	toward := -1.0
	if tcx > cx {
		toward = 1.0
	}
	if feet <= tp.y + 0.5 {
		return [cx > tcx + 2.0, cx < tcx - 2.0, false]
	}
	if self.y >= tp.y + tp.h - 0.5 {
		// Still below the target: don't drift under it.
		nx := x + (self.vx + toward) * 0.8
		if nx + w > tl && nx < tr {
			toward = -toward
		}
	}
	return [toward < 0.0, toward > 0.0, false]
}

out := steer()
left = out[0]
right = out[1]
jump = out[2]
`
