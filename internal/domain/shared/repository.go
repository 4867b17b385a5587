package shared

// HistoryLimit caps every per-user history query
const HistoryLimit = 50
