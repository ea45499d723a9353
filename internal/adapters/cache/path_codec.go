package cache

import (
	"database/sql"
	"delivery-tour-service/internal/ports"
	"encoding/json"
	"fmt"
)

// Vertex paths are stored as a JSON array of intersection IDs.
func encodeVertices(vertices []int64) (string, error) {
	if len(vertices) == 0 {
		return "", fmt.Errorf("encode vertices: empty path")
	}
	b, err := json.Marshal(vertices)
	if err != nil {
		return "", fmt.Errorf("encode vertices: %w", err)
	}
	return string(b), nil
}

func decodeVertices(s string) ([]int64, error) {
	var vertices []int64
	if err := json.Unmarshal([]byte(s), &vertices); err != nil {
		return nil, fmt.Errorf("decode vertices: %w", err)
	}
	return vertices, nil
}

// Drop duplicate destinations, keeping the first occurrence.
func uniqueDestinations(destinations []int64) []int64 {
	seen := make(map[int64]struct{}, len(destinations))
	uniq := make([]int64, 0, len(destinations))
	for _, d := range destinations {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		uniq = append(uniq, d)
	}
	return uniq
}

// Read (destination, length_meters, vertices) rows.
func scanPaths(rows *sql.Rows, sizeHint int) (map[int64]ports.PathResult, error) {
	out := make(map[int64]ports.PathResult, sizeHint)
	for rows.Next() {
		var dest int64
		var length float64
		var raw string
		if err := rows.Scan(&dest, &length, &raw); err != nil {
			return nil, fmt.Errorf("get path cache: scan rows: %w", err)
		}

		vertices, err := decodeVertices(raw)
		if err != nil {
			return nil, fmt.Errorf("get path cache dest=%d: %w", dest, err)
		}
		out[dest] = ports.PathResult{LengthMeters: length, Vertices: vertices}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get path cache: row iteration: %w", err)
	}

	return out, nil
}
