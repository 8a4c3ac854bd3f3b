// Package fs abstracts the file system mutations of blobstore.LocalStore so
// tests can inject write, sync, close and rename failures.
//
// Production code uses fs.Default; tests wrap it in a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule(".tmp-", fs.Fault{FailOnSync: true})
//	store := blobstore.NewLocalStore(dir, blobstore.WithFileSystem(ffs))
package fs
