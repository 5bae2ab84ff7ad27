// Package docstore persists entity descriptions as JSON documents in SQLite.
//
// A store is opened by URL with create-or-open semantics: the first Open of
// a URL creates the database file and schema, later opens reuse it. Documents
// are grouped into named collections and keyed by id within a collection.
//
//	store, err := docstore.Open(ctx, "sqlite:./data/descriptions.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := docstore.SaveRegistry(ctx, store, reg); err != nil {
//	    return err
//	}
//
// The store is optional; the sensing pipeline runs entirely from the
// in-memory registry.
package docstore
