package store

import (
	"bufio"
	"fmt"
	"io"

	"stockroom/internal/atomicfile"
	"stockroom/internal/models"
)

// action tells rewriteAll what to do with one record.
type action int

const (
	// actionKeep writes the record unchanged, it did not match.
	actionKeep action = iota
	// actionMatched writes the record unchanged but counts it as found.
	actionMatched
	// actionReplace writes the record as modified by the transform.
	actionReplace
	// actionOmit drops the record.
	actionOmit
)

// transformFunc may modify item in place before returning actionReplace.
type transformFunc func(item *models.Item) action

// rewriteAll streams every record through fn into a new file and atomically
// replaces the data file with it. When no record matched, or nothing was
// changed, the new file is discarded and the data file is left as it was.
// Caller holds s.mu.
func (s *Store) rewriteAll(fn transformFunc) (found bool, err error) {
	src, err := s.openSource()
	if err != nil {
		return false, err
	}
	if src == nil {
		return false, nil
	}
	defer src.Close()

	dst, err := atomicfile.New(s.path)
	if err != nil {
		return false, fmt.Errorf("%w: open for write: %v", ErrStorageUnavailable, err)
	}
	defer dst.Discard()

	r := bufio.NewReader(src)
	w := bufio.NewWriter(dst)
	buf := make([]byte, RecordSize)
	changed := false
	for {
		_, err := io.ReadFull(r, buf)
		if err == io.EOF {
			break
		}
		if err == io.ErrUnexpectedEOF {
			return false, fmt.Errorf("%w: trailing partial record in %s", ErrCorruptRecord, s.path)
		}
		if err != nil {
			return false, fmt.Errorf("%w: read: %v", ErrStorageUnavailable, err)
		}
		item, err := decodeRecord(buf)
		if err != nil {
			return false, err
		}

		switch fn(&item) {
		case actionKeep:
		case actionMatched:
			found = true
		case actionReplace:
			found, changed = true, true
			if err := validateItem(item); err != nil {
				return false, err
			}
			encodeRecord(buf, item)
		case actionOmit:
			found, changed = true, true
			continue
		}
		if _, err := w.Write(buf); err != nil {
			return false, fmt.Errorf("%w: write: %v", ErrStorageUnavailable, err)
		}
	}

	if !changed {
		s.logger.Debug().Bool("found", found).Msg("rewrite discarded, nothing changed")
		return found, nil
	}
	if err := w.Flush(); err != nil {
		return false, fmt.Errorf("%w: write: %v", ErrStorageUnavailable, err)
	}
	// some platforms refuse to rename over an open file
	_ = src.Close()
	if err := atomicReplace(dst); err != nil {
		return false, err
	}
	return true, nil
}

// atomicReplace is the single commit point of the rewrite protocol.
func atomicReplace(dst *atomicfile.File) error {
	if err := dst.Commit(); err != nil {
		return fmt.Errorf("%w: replace: %v", ErrStorageUnavailable, err)
	}
	return nil
}
