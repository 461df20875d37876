// cmd/tools/shape-indexer/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/config"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/database"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/common/logger"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/search"
	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/pkg/registry"
)

// shape-indexer seeds the Elasticsearch shape catalog from the registry
// file. Reindexing is safe to repeat: documents are addressed by shape
// ID, so an updated registry overwrites in place.
func main() {
	registryFile := flag.String("registry", "configs/shape-registry.json", "Path to the shape registry file")
	addresses := flag.String("es", "http://localhost:9200", "Comma-separated Elasticsearch addresses")
	index := flag.String("index", "shapes", "Target index name")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall indexing timeout")
	verify := flag.Bool("verify", true, "Run a match_all search after seeding")
	flag.Parse()

	reg, err := registry.LoadRegistry(*registryFile)
	if err != nil {
		fmt.Printf("Error loading registry %s: %v\n", *registryFile, err)
		os.Exit(1)
	}
	fmt.Printf("Loaded registry %s: version %s, %d shapes\n", *registryFile, reg.Version, len(reg.Shapes))

	esClient, err := database.NewElasticsearch(config.ElasticsearchConfig{
		Addresses: strings.Split(*addresses, ","),
		Username:  os.Getenv("ELASTICSEARCH_USERNAME"),
		Password:  os.Getenv("ELASTICSEARCH_PASSWORD"),
	})
	if err != nil {
		fmt.Printf("Error creating Elasticsearch client: %v\n", err)
		os.Exit(1)
	}
	if err := esClient.Ping(); err != nil {
		fmt.Printf("Error reaching Elasticsearch at %s: %v\n", *addresses, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	svc := search.NewService(esClient.Client, *index, logger.NewNoOpLogger())
	if err := svc.IndexShapes(ctx, reg.Shapes); err != nil {
		fmt.Printf("Error indexing shapes: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Indexed %d shapes into %q\n", len(reg.Shapes), *index)

	if *verify {
		// Fresh documents may lag behind the default refresh interval,
		// so give the index a moment before counting.
		time.Sleep(1 * time.Second)

		result, err := svc.Search(ctx, search.Query{Size: 1})
		if err != nil {
			fmt.Printf("Verification search failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Verification search found %d documents in %d ms\n", result.TotalHits, result.Took)
	}
}
