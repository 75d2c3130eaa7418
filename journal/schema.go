package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	start_price REAL NOT NULL,
	add_interval REAL NOT NULL,
	display_interval REAL NOT NULL,
	direction TEXT NOT NULL,
	sampling TEXT NOT NULL,
	rule_count INTEGER NOT NULL,
	steps INTEGER NOT NULL,
	final_price INTEGER NOT NULL,
	final_position TEXT NOT NULL,
	final_average REAL NOT NULL,
	final_pl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS result_rows (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	seq INTEGER NOT NULL,
	price INTEGER NOT NULL,
	total_position TEXT NOT NULL,
	average_price REAL NOT NULL,
	profit_loss REAL NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);
`

const PostgresSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created TIMESTAMPTZ NOT NULL,
	start_price DOUBLE PRECISION NOT NULL,
	add_interval DOUBLE PRECISION NOT NULL,
	display_interval DOUBLE PRECISION NOT NULL,
	direction TEXT NOT NULL,
	sampling TEXT NOT NULL,
	rule_count INTEGER NOT NULL,
	steps INTEGER NOT NULL,
	final_price BIGINT NOT NULL,
	final_position NUMERIC(20, 1) NOT NULL,
	final_average DOUBLE PRECISION NOT NULL,
	final_pl DOUBLE PRECISION NOT NULL
);

CREATE TABLE IF NOT EXISTS result_rows (
	run_id TEXT NOT NULL REFERENCES runs(run_id),
	seq INTEGER NOT NULL,
	price BIGINT NOT NULL,
	total_position NUMERIC(20, 1) NOT NULL,
	average_price DOUBLE PRECISION NOT NULL,
	profit_loss DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);
`
