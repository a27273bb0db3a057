// Package netflix loads the Netflix-Prize-style training set into a
// train.SparseMatrix (spec.md §4.9, grounded on
// original_source/hogmild/src/data_loader/netflix.rs).
package netflix

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/paulmure/hogmild-sim/train"
)

// Load reads up to nMovies per-movie rating files from dir and returns
// a SparseMatrix with one column per movie and one row per distinct
// user encountered, in first-seen order. Each file is one movie: its
// first line is a header (movie id) and is skipped; every remaining
// line is "user_id,rating,date". Ratings are normalized to
// rating/2.5 - 1, matching netflix.rs's load_one_movie exactly.
//
// Movie (column) order is the sorted order of file names in dir, which
// makes column assignment deterministic across runs and platforms —
// original_source relies on the OS's read_dir order, which Go does not
// guarantee the same way, so this is a deliberate, documented
// generalization (DESIGN.md, "Netflix loader").
func Load(dir string, nMovies int, log logrus.FieldLogger) (*train.SparseMatrix, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("netflix: reading data dir %q: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	if nMovies < len(names) {
		names = names[:nMovies]
	}

	log.Infof("loading netflix dataset with %d movies", len(names))

	m := train.NewSparseMatrix(0, 0)
	userToRow := make(map[int]int)

	for col, name := range names {
		if err := loadOneMovie(filepath.Join(dir, name), col, m, userToRow); err != nil {
			return nil, fmt.Errorf("netflix: loading %q: %w", name, err)
		}
	}

	log.Info("netflix dataset loaded")
	return m, nil
}

func loadOneMovie(path string, col int, m *train.SparseMatrix, userToRow map[int]int) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return scanner.Err()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		toks := strings.Split(line, ",")
		if len(toks) < 2 {
			return fmt.Errorf("malformed rating line %q", line)
		}

		userID, err := strconv.Atoi(strings.TrimSpace(toks[0]))
		if err != nil {
			return fmt.Errorf("parsing user id in %q: %w", line, err)
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(toks[1]), 64)
		if err != nil {
			return fmt.Errorf("parsing rating in %q: %w", line, err)
		}
		ratingNorm := (rating / 2.5) - 1.0

		row, ok := userToRow[userID]
		if !ok {
			row = len(userToRow)
			userToRow[userID] = row
		}

		m.Insert(row, col, ratingNorm)
	}
	return scanner.Err()
}
