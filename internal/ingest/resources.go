package ingest

import (
	"context"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"campuslens/internal/llm"
	"campuslens/internal/retrieval"
)

// Resource is one campus support office offered back to students alongside
// the analysis.
type Resource struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	URL         string `yaml:"url" json:"url"`
	Domain      string `yaml:"domain" json:"domain"`
}

// defaultResources ships with the binary so a fresh deployment has something
// to recommend before anyone provides a campus-specific seed file.
var defaultResources = []Resource{
	{
		Name:        "UMass Financial Aid Office",
		Description: "Provides counseling on financial aid packages, FAFSA completion, and aid eligibility",
		URL:         "https://www.umass.edu/financialaid",
		Domain:      "finance",
	},
	{
		Name:        "Student Legal Services Office",
		Description: "Free legal consultations for UMass students on housing, contracts, and disputes",
		URL:         "https://www.umass.edu/slso",
		Domain:      "housing",
	},
	{
		Name:        "International Programs Office",
		Description: "Assists international students with visa, compliance, and work authorization matters",
		URL:         "https://www.umass.edu/ipo",
		Domain:      "visa",
	},
	{
		Name:        "Dean of Students Office",
		Description: "Provides support with academic standing, appeals, and disciplinary matters",
		URL:         "https://www.umass.edu/dos",
		Domain:      "finance",
	},
	{
		Name:        "Housing Support Services",
		Description: "Assists with housing issues, roommate conflicts, and lease questions",
		URL:         "https://www.umass.edu/housing",
		Domain:      "housing",
	},
	{
		Name:        "Bursar's Office",
		Description: "Manages student accounts, billing, payments, and financial holds",
		URL:         "https://www.umass.edu/bursar",
		Domain:      "finance",
	},
}

// LoadResources reads a YAML seed file. An empty path returns the builtin
// set unchanged.
func LoadResources(path string) ([]Resource, error) {
	if path == "" {
		return defaultResources, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read resource seed: %w", err)
	}
	var doc struct {
		Resources []Resource `yaml:"resources"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse resource seed: %w", err)
	}
	if len(doc.Resources) == 0 {
		return defaultResources, nil
	}
	return doc.Resources, nil
}

// SeedResources embeds and stores the resource set unless the collection is
// already populated. Safe to call on every startup.
func (ix *Indexer) SeedResources(ctx context.Context, resources []Resource) error {
	count, err := ix.store.Count(ctx, retrieval.CollectionResources)
	if err != nil {
		return fmt.Errorf("count resources: %w", err)
	}
	if count > 0 {
		log.Printf("ingest: campus resources already seeded (%d)", count)
		return nil
	}

	records := make([]retrieval.Record, len(resources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, res := range resources {
		g.Go(func() error {
			vec, err := ix.emb.Embed(gctx, res.Name+" "+res.Description, llm.TaskDocument)
			if err != nil {
				return fmt.Errorf("embed resource %q: %w", res.Name, err)
			}
			records[i] = retrieval.Record{
				ID:          fmt.Sprintf("resource_%d", i),
				Text:        res.Name + " " + res.Description,
				Domain:      res.Domain,
				Name:        res.Name,
				URL:         res.URL,
				Description: res.Description,
				Vector:      vec,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ix.store.Upsert(ctx, retrieval.CollectionResources, records...); err != nil {
		return fmt.Errorf("upsert resources: %w", err)
	}
	log.Printf("ingest: seeded %d campus resources", len(records))
	return nil
}
