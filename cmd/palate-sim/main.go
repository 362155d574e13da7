// Command palate-sim runs one aggregation pass over a YAML fixture of
// candidates and ballots and prints the result as JSON. It exists for
// trying scoring changes against recorded sessions without a live
// service.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/palate-app/palate/internal/domain"
	"github.com/palate-app/palate/internal/engine"
)

// fixture is the on-disk shape of a recorded voting session.
type fixture struct {
	Candidates []domain.Candidate  `yaml:"candidates"`
	Ballots    []domain.VoteRecord `yaml:"ballots"`
}

func main() {
	var (
		fixturePath = flag.String("fixture", "testdata/session.yaml", "Path to session fixture YAML")
		shuffleSeed = flag.Int64("shuffle-seed", 0, "Enable tie-break shuffling with this seed (0 disables)")
	)
	flag.Parse()

	data, err := os.ReadFile(*fixturePath)
	if err != nil {
		log.Fatalf("Failed to read fixture: %v", err)
	}

	var fix fixture
	if err := yaml.Unmarshal(data, &fix); err != nil {
		log.Fatalf("Failed to parse fixture: %v", err)
	}

	var opts []engine.Option
	if *shuffleSeed != 0 {
		opts = append(opts, engine.WithTieShuffle(rand.NewSource(*shuffleSeed)))
	}

	result := engine.New(opts...).Aggregate(fix.Candidates, fix.Ballots)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(out))
}
