package testutils

import (
	"fmt"
	"time"

	statementdomain "github.com/Black-And-White-Club/truthtable/app/modules/statement/domain"
	"github.com/brianvoe/gofakeit/v7"
)

var (
	topics      = []string{"health", "economy", "climate", "sport", "technology"}
	truthLabels = []string{"true", "false", "unknowable"}
)

// TestDataGenerator builds catalog fixtures from a seeded faker.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  uint64
}

// NewTestDataGenerator uses the given seed, or the clock when none is passed.
func NewTestDataGenerator(seed ...uint64) *TestDataGenerator {
	s := uint64(time.Now().UnixNano())
	if len(seed) > 0 {
		s = seed[0]
	}
	return &TestDataGenerator{faker: gofakeit.New(s), seed: s}
}

func (g *TestDataGenerator) Seed() uint64 { return g.seed }

// GenerateStatements returns count statements with ids stmt-01.. in play order.
func (g *TestDataGenerator) GenerateStatements(count int) []statementdomain.Statement {
	out := make([]statementdomain.Statement, count)
	for i := range out {
		out[i] = statementdomain.Statement{
			ID:         fmt.Sprintf("stmt-%02d", i+1),
			Text:       g.faker.Sentence(g.faker.Number(6, 12)),
			Topic:      g.faker.RandomString(topics),
			TruthLabel: g.faker.RandomString(truthLabels),
			Position:   i,
		}
	}
	return out
}

// GenerateItems returns count items with no prerequisites and costs in
// [minCost, maxCost].
func (g *TestDataGenerator) GenerateItems(count, minCost, maxCost int) []statementdomain.Item {
	out := make([]statementdomain.Item, count)
	for i := range out {
		out[i] = statementdomain.Item{
			ID:          fmt.Sprintf("item-%02d", i+1),
			Name:        g.faker.Sentence(2),
			Description: g.faker.Sentence(8),
			Cost:        g.faker.Number(minCost, maxCost),
		}
	}
	return out
}

// GeneratePlayerNames returns count distinct names.
func (g *TestDataGenerator) GeneratePlayerNames(count int) []string {
	seen := make(map[string]bool, count)
	out := make([]string, 0, count)
	for len(out) < count {
		name := g.faker.Name()
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// WrongChoice returns a choice that does not answer label.
func WrongChoice(label string) string {
	if label == "true" {
		return "false"
	}
	return "true"
}

// RightChoice returns the choice that answers label.
func RightChoice(label string) string {
	if label == "unknowable" {
		return "unknown"
	}
	return label
}
