package config

// Redis key layout. Kept in one place so cache consumers and workers cannot
// drift apart.

const (
	// ChapterListKey caches the chapter list shown during identification.
	ChapterListKey = "chapters:list"
	// PersistResultsQueue holds graded attempts whose synchronous insert
	// failed; the result worker drains it.
	PersistResultsQueue = "persist_results_queue"
)
