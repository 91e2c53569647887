package storage

const insertRunSQL = `
	INSERT INTO runs (
		id, name, created_at, model, mode,
		bottom_depth, bottom_time, gf_low, gf_high,
		runtime, deco_time, max_depth, points,
		plan, summary
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertPointSQL = `
	INSERT INTO run_points (
		run_id, seq, time, interval, depth, pressure,
		phase, tank, tank_name,
		o2, he, n2, tank_pressure,
		pp_o2, pp_he, pp_n2,
		gf, gf_set, ascending, depth_avg,
		snapshot
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const insertStopSQL = `
	INSERT INTO run_stops (run_id, number, depth, duration, done, runtime)
	VALUES (?, ?, ?, ?, ?, ?)
`

const listRunsSQL = `
	SELECT id, name, created_at, model, mode,
	       bottom_depth, bottom_time, gf_low, gf_high,
	       runtime, deco_time, max_depth, points
	FROM runs
	ORDER BY created_at DESC, rowid DESC
	LIMIT ?
`

const selectPointsSQL = `
	SELECT time, interval, depth, pressure,
	       phase, tank, tank_name,
	       o2, he, n2, tank_pressure,
	       pp_o2, pp_he, pp_n2,
	       gf, gf_set, ascending, depth_avg,
	       snapshot
	FROM run_points
	WHERE run_id = ?
	ORDER BY seq
`

const selectStopsSQL = `
	SELECT number, depth, duration, done, runtime
	FROM run_stops
	WHERE run_id = ?
	ORDER BY number
`
