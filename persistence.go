package cardsync

import (
	"bufio"
	"context"
	"os"
	"strings"

	"github.com/agentstation/cardsync/internal/snapshot"
	"github.com/agentstation/cardsync/pkg/errors"
	"github.com/agentstation/cardsync/pkg/logging"
)

// loadSnapshot reads the snapshot of the last verified run. An unreadable
// snapshot is ignored with a warning, which makes every panel scan.
func (s *syncer) loadSnapshot(ctx context.Context) []string {
	cards, err := snapshot.New(s.config.snapshotPath).Load()
	if err != nil {
		logging.FromContext(ctx).Warn().
			Err(err).
			Str("path", s.config.snapshotPath).
			Msg("Ignoring unreadable snapshot")
		return nil
	}
	return cards
}

// saveSnapshot records the desired card set in canonical decimal form.
func (s *syncer) saveSnapshot(cards []string) error {
	return snapshot.New(s.config.snapshotPath).Save(cards)
}

// ReadCardFile reads hexadecimal card identifiers, one per line. Blank lines
// and lines starting with # are skipped. Identifiers are not validated here.
func ReadCardFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return ids, nil
}
