package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"traffic-ca/internal/road"
)

type fileRecord struct {
	Tick  int   `json:"tick"`
	Cells []int `json:"cells"`
}

// File appends snapshots to one JSON-lines file per road inside a directory.
// A tick written twice resolves to its latest record.
type File struct {
	dir string
	mu  sync.Mutex
}

// NewFile returns a store rooted at dir, creating it if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &File{dir: dir}, nil
}

// Path returns the file holding a road's snapshots.
func (f *File) Path(roadName string) string {
	return filepath.Join(f.dir, "Write_"+roadName+".jsonl")
}

// Reset removes any snapshots previously written for a road.
func (f *File) Reset(roadName string) error {
	if err := checkKey(roadName, 0); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.Path(roadName))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Write appends st as the snapshot for tick.
func (f *File) Write(ctx context.Context, roadName string, tick int, st *road.State) error {
	if err := checkKey(roadName, tick); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	line, err := json.Marshal(fileRecord{Tick: tick, Cells: st.Cells()})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	line = append(line, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()
	out, err := os.OpenFile(f.Path(roadName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open snapshot file: %w", err)
	}
	if _, err := out.Write(line); err != nil {
		out.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	return out.Close()
}

// Read scans the road's file for the latest record of tick.
func (f *File) Read(ctx context.Context, roadName string, tick int) (*road.State, error) {
	if err := checkKey(roadName, tick); err != nil {
		return nil, err
	}
	var found []int
	err := f.scan(ctx, roadName, func(rec fileRecord) {
		if rec.Tick == tick {
			found = rec.Cells
		}
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, notFound(roadName, tick)
	}
	return road.StateFromCells(found)
}

// Ticks lists the distinct ticks stored for a road.
func (f *File) Ticks(ctx context.Context, roadName string) ([]int, error) {
	seen := map[int]struct{}{}
	err := f.scan(ctx, roadName, func(rec fileRecord) { seen[rec.Tick] = struct{}{} })
	if err != nil {
		return nil, err
	}
	ticks := make([]int, 0, len(seen))
	for t := range seen {
		ticks = append(ticks, t)
	}
	sort.Ints(ticks)
	return ticks, nil
}

func (f *File) scan(ctx context.Context, roadName string, fn func(fileRecord)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	in, err := os.Open(f.Path(roadName))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open snapshot file: %w", err)
	}
	defer in.Close()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var rec fileRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return fmt.Errorf("%s line %d: %w", f.Path(roadName), line, err)
		}
		fn(rec)
	}
	return sc.Err()
}
