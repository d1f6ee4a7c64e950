package dbmodels

const TABLE_ACTIVITY_LOGS = "activity_logs"
