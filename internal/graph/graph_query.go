package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// FileRef names one file in the graph.
type FileRef struct {
	Name   string
	Origin string
}

// SharedKey is a key defined by more than one file of a mod.
type SharedKey struct {
	Key   string
	Files []FileRef
}

// GraphQuerier reads the localisation graph.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// SharedKeys lists keys of modPath defined by several files, mod files first.
func (gq *GraphQuerier) SharedKeys(ctx context.Context, modPath string) ([]SharedKey, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (f:LocFile {mod: $mod})-[:DEFINES]->(k:LocKey {mod: $mod})
		WITH k, f ORDER BY f.origin DESC, f.name
		WITH k, collect({name: f.name, origin: f.origin}) AS files
		WHERE size(files) > 1
		RETURN k.key AS key, files
		ORDER BY key
	`, map[string]any{"mod": modPath})
	if err != nil {
		return nil, fmt.Errorf("query shared keys: %w", err)
	}

	var out []SharedKey
	for result.Next(ctx) {
		record := result.Record()
		key, _ := record.Get("key")
		files, _ := record.Get("files")

		sk := SharedKey{Key: fmt.Sprintf("%v", key)}
		list, _ := files.([]any)
		for _, item := range list {
			m, _ := item.(map[string]any)
			sk.Files = append(sk.Files, FileRef{
				Name:   fmt.Sprintf("%v", m["name"]),
				Origin: fmt.Sprintf("%v", m["origin"]),
			})
		}
		out = append(out, sk)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read shared keys: %w", err)
	}

	return out, nil
}

// KeyStates returns the state of key in every file of modPath that defines it.
func (gq *GraphQuerier) KeyStates(ctx context.Context, modPath, key string) (map[string]string, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (f:LocFile {mod: $mod})-[d:DEFINES]->(:LocKey {mod: $mod, key: $key})
		RETURN f.name AS file, d.state AS state
	`, map[string]any{"mod": modPath, "key": key})
	if err != nil {
		return nil, fmt.Errorf("query key states: %w", err)
	}

	out := make(map[string]string)
	for result.Next(ctx) {
		record := result.Record()
		file, _ := record.Get("file")
		state, _ := record.Get("state")
		out[fmt.Sprintf("%v", file)] = fmt.Sprintf("%v", state)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read key states: %w", err)
	}
	return out, nil
}
