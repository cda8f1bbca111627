package storage

import (
	"errors"
	"io/fs"
	"os"
)

// sqliteFiles lists the database file and the sidecars SQLite keeps in WAL mode.
func sqliteFiles(dbPath string) []string {
	return []string{dbPath, dbPath + "-wal", dbPath + "-shm"}
}

// DiskUsageBytes sums the sizes of the named files. Files that do not exist count
// as zero; a directory is an error.
func DiskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			continue
		case err != nil:
			return 0, err
		case info.IsDir():
			return 0, &fs.PathError{Op: "size", Path: p, Err: errors.New("is a directory")}
		}
		total += info.Size()
	}
	return total, nil
}
