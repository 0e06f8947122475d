// Package watch reports changes to RDL documents and schema files.
//
// A Watcher follows every configured path (recursively for directories),
// filters events by file extension, and delivers changes in debounced
// batches so an editor's save storm becomes one re-check:
//
//	w, err := watch.New(watch.FromConfig(cfg.Watch), logger, collector)
//	err = w.Watch(ctx, func(ctx context.Context, changes []watch.Change) {
//		for _, c := range changes { ... }
//	})
package watch
