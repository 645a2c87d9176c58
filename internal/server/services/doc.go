// Package services contains marketd's business logic: the storage network,
// the payment network and the dataset catalog. Services depend on the
// repositories through repomanager.RepositoryManager so the same code runs
// on PostgreSQL and in memory.
package services
