package sqldb

// Amounts are stored as decimal text and timestamps as RFC3339 text so that
// the schema is portable between sqlite and postgres.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS projects (
    id                   TEXT PRIMARY KEY,
    code                 TEXT,
    name                 TEXT NOT NULL,
    current_budget       TEXT NOT NULL,
    executed_amount      TEXT NOT NULL,
    remaining_budget     TEXT NOT NULL,
    execution_rate       TEXT NOT NULL,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS budget_line_items (
    id                   TEXT PRIMARY KEY,
    project_id           TEXT NOT NULL REFERENCES projects(id),
    category             TEXT,
    name                 TEXT NOT NULL,
    current_budget       TEXT NOT NULL,
    executed_amount      TEXT NOT NULL,
    pending_amount       TEXT NOT NULL,
    remaining_before     TEXT NOT NULL,
    remaining_after      TEXT NOT NULL,
    execution_rate       TEXT NOT NULL,
    active               INTEGER NOT NULL DEFAULT 1,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS execution_requests (
    id                   TEXT PRIMARY KEY,
    request_number       TEXT NOT NULL UNIQUE,
    request_type         TEXT NOT NULL,
    project_id           TEXT NOT NULL REFERENCES projects(id),
    line_item_id         TEXT NOT NULL REFERENCES budget_line_items(id),
    amount               TEXT NOT NULL,
    execution_date       TEXT NOT NULL,
    purpose              TEXT NOT NULL,
    status               TEXT NOT NULL,
    current_step         INTEGER NOT NULL,
    total_steps          INTEGER NOT NULL,
    requested_by         TEXT NOT NULL,
    rejection_reason     TEXT,
    created_at           TEXT NOT NULL,
    updated_at           TEXT NOT NULL,
    completed_at         TEXT
);

CREATE TABLE IF NOT EXISTS approval_steps (
    id                   TEXT PRIMARY KEY,
    request_id           TEXT NOT NULL REFERENCES execution_requests(id),
    step                 INTEGER NOT NULL,
    approver_role        TEXT NOT NULL,
    status               TEXT NOT NULL,
    approver_id          TEXT,
    decision             TEXT,
    decided_at           TEXT,
    created_at           TEXT NOT NULL,
    UNIQUE (request_id, step)
);

CREATE INDEX IF NOT EXISTS idx_line_items_project ON budget_line_items(project_id);
CREATE INDEX IF NOT EXISTS idx_requests_created ON execution_requests(created_at);
CREATE INDEX IF NOT EXISTS idx_steps_role_status ON approval_steps(approver_role, status);
`
