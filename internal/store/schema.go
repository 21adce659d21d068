package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
    entry_id             TEXT PRIMARY KEY,
    kind                 TEXT NOT NULL,
    source               TEXT NOT NULL,
    amount               TEXT NOT NULL,
    expected_date        TEXT NOT NULL,
    status               TEXT NOT NULL,
    description          TEXT,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scenarios (
    scenario_id          TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS scenario_adjustments (
    scenario_id          TEXT NOT NULL REFERENCES scenarios(scenario_id) ON DELETE CASCADE,
    position             INTEGER NOT NULL,
    entry_id             TEXT NOT NULL,
    kind                 TEXT NOT NULL,
    value                TEXT NOT NULL,
    PRIMARY KEY (scenario_id, position)
);

CREATE INDEX IF NOT EXISTS idx_entries_status_date ON entries(status, expected_date);
CREATE INDEX IF NOT EXISTS idx_scenarios_created ON scenarios(created_at);

-- revision counts committed changes to entries and scenarios
CREATE TABLE IF NOT EXISTS revision (
    id                   INTEGER PRIMARY KEY CHECK (id = 1),
    value                INTEGER NOT NULL
);
INSERT OR IGNORE INTO revision (id, value) VALUES (1, 0);

CREATE TRIGGER IF NOT EXISTS trg_entries_insert_revision AFTER INSERT ON entries
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;

CREATE TRIGGER IF NOT EXISTS trg_entries_update_revision AFTER UPDATE ON entries
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;

CREATE TRIGGER IF NOT EXISTS trg_entries_delete_revision AFTER DELETE ON entries
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;

CREATE TRIGGER IF NOT EXISTS trg_scenarios_insert_revision AFTER INSERT ON scenarios
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;

CREATE TRIGGER IF NOT EXISTS trg_scenarios_update_revision AFTER UPDATE ON scenarios
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;

CREATE TRIGGER IF NOT EXISTS trg_scenarios_delete_revision AFTER DELETE ON scenarios
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;

CREATE TRIGGER IF NOT EXISTS trg_scenario_adjustments_insert_revision AFTER INSERT ON scenario_adjustments
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;

CREATE TRIGGER IF NOT EXISTS trg_scenario_adjustments_update_revision AFTER UPDATE ON scenario_adjustments
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;

CREATE TRIGGER IF NOT EXISTS trg_scenario_adjustments_delete_revision AFTER DELETE ON scenario_adjustments
BEGIN
    UPDATE revision SET value = value + 1 WHERE id = 1;
END;
`
