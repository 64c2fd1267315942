// Package storage writes downloaded images under the download root.
//
// Each board gets its own folder ({root}/{boardName}). Files are written to
// a .tmp sibling first and renamed into place, so an interrupted download
// leaves no truncated image behind and a later run with skip-existing
// enabled will fetch it again.
//
//	manager, err := storage.NewManager("Downloads")
//	folder, err := manager.EnsureFolder(manager.BaseDir(), "travel")
//	n, err := manager.WriteFile(filepath.Join(folder, "2b30694a.jpg"), resp.Body)
package storage
