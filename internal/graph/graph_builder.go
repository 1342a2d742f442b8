package graph

import (
	"context"
	"fmt"

	"localization-editor/internal/parser"
	"localization-editor/internal/resolver"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// GraphBuilder publishes resolved localisation into Neo4j as
// (:Mod)-[:HAS_FILE]->(:LocFile)-[:DEFINES]->(:LocKey).
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// EnsureSchema creates constraints and indexes on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Mod) REQUIRE m.path IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (f:LocFile) REQUIRE (f.mod, f.name) IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (k:LocKey) REQUIRE (k.mod, k.key) IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// Publish replaces the graph of modPath with the files and keys of loc.
func (gb *GraphBuilder) Publish(ctx context.Context, modPath string, loc *resolver.Localization) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	// Drop the previous snapshot so removed files and keys disappear.
	_, err := session.Run(ctx, `
		MATCH (n) WHERE (n:LocFile OR n:LocKey) AND n.mod = $mod
		DETACH DELETE n
	`, map[string]any{"mod": modPath})
	if err != nil {
		return fmt.Errorf("clear mod graph: %w", err)
	}

	if _, err := session.Run(ctx, `MERGE (:Mod {path: $mod})`, map[string]any{"mod": modPath}); err != nil {
		return fmt.Errorf("upsert mod node: %w", err)
	}

	files, keys := 0, 0
	var publishErr error
	loc.Each(func(origin resolver.Origin, name string, data *parser.Data) {
		if publishErr != nil {
			return
		}

		rows := make([]any, 0, data.Len())
		for _, rec := range data.Records() {
			rows = append(rows, map[string]any{
				"key":   rec.Key,
				"line":  rec.Line,
				"index": rec.Index,
				"state": rec.State.String(),
			})
		}

		_, err := session.Run(ctx, `
			MATCH (m:Mod {path: $mod})
			MERGE (f:LocFile {mod: $mod, name: $name})
			SET f.origin = $origin
			MERGE (m)-[:HAS_FILE]->(f)
			WITH f
			UNWIND $rows AS row
			MERGE (k:LocKey {mod: $mod, key: row.key})
			MERGE (f)-[d:DEFINES]->(k)
			SET d.line = row.line, d.index = row.index, d.state = row.state
		`, map[string]any{
			"mod":    modPath,
			"name":   name,
			"origin": string(origin),
			"rows":   rows,
		})
		if err != nil {
			publishErr = fmt.Errorf("publish file %s: %w", name, err)
			return
		}
		files++
		keys += len(rows)
	})
	if publishErr != nil {
		return publishErr
	}

	log.Info().Str("mod", modPath).Int("files", files).Int("keys", keys).Msg("Published localisation graph")
	return nil
}
