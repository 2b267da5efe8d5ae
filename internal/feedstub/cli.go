package feedstub

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseOrder parses a comma separated id list such as "3,1,2,4,5,6,7,8,9,10,11,12".
// Values are not validated so broken feeds can be served on purpose.
func ParseOrder(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("order: %q is not an integer", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ShowHelp prints usage information for the feed stub.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Uranai Feed Stub
================

Serves a synthetic ranking document at /uranai.xml dated today (+09:00).

Usage:
  go run ./cmd/feedstub [options]

Options:
  -addr string
        Listen address (default ":9081")
  -seed uint
        Shuffle the ranking with this seed (default: identity order)
  -order string
        Explicit comma separated ids, overrides -seed
  -encoding string
        utf-8 or shift_jis (default "utf-8")
  -shift int
        Date the document this many days from today
  -status int
        Answer every request with this HTTP status
  -help
        Show this help message

Examples:
  # Point the service at the stub
  URANAI_FEED_URL=http://localhost:9081/uranai.xml go run ./cmd

  # Serve a stale document
  go run ./cmd/feedstub -shift -1
`)
}
