package domain

import "fmt"

// ConfigurationError reports a required credential or setting that is
// missing. It is raised lazily, at first use of the dependent client,
// never at process start.
type ConfigurationError struct {
	Name string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Name)
}

// ProviderCallError reports a failed completion or embedding call, or
// provider output that could not be used.
type ProviderCallError struct {
	Op  string
	Err error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("provider call %s failed: %v", e.Op, e.Err)
}

func (e *ProviderCallError) Unwrap() error { return e.Err }

// StorageError reports a vector store read or write failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RetrievalError reports that a news search backend failed.
type RetrievalError struct {
	Backend string
	Err     error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("news retrieval via %s failed: %v", e.Backend, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// IngestionError reports that a batch of chunks could not be stored.
// The whole ingestion fails as a unit; callers in the graph treat it
// as non-fatal and continue with zero chunks recorded.
type IngestionError struct {
	Err error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed: %v", e.Err)
}

func (e *IngestionError) Unwrap() error { return e.Err }
