package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/partdex/internal/domain"
	"github.com/kailas-cloud/partdex/internal/domain/search/filter"
	"github.com/kailas-cloud/partdex/internal/domain/search/request"
)

var (
	resultKeyPrefix = domain.KeyPrefix + "search:"
	facetsKey       = domain.KeyPrefix + "search:filter-options"
	popularPrefix   = domain.KeyPrefix + "search:popular:"
)

// keyMaterial is the canonical form hashed into a result cache key. Field
// order is fixed by the struct and filter value sets are sorted.
type keyMaterial struct {
	Query   string          `json:"q"`
	Filters filter.Filters  `json:"f"`
	Options request.Options `json:"o"`
}

// resultKey derives the cache key for a validated request. The user id is
// not part of the key: results do not depend on who asks.
func resultKey(req *request.Request) (string, error) {
	data, err := json.Marshal(keyMaterial{
		Query:   req.Query(),
		Filters: req.Filters().Canonical(),
		Options: req.Options(),
	})
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	h := sha256.Sum256(data)
	return resultKeyPrefix + hex.EncodeToString(h[:]), nil
}

func popularKey(limit int) string {
	return popularPrefix + strconv.Itoa(limit)
}
