// Command pairgen generates row-aligned record CSV pairs for exercising
// the matching engine. Each left record gets a right-side counterpart
// that is either a true match (possibly perturbed within tolerance) or
// a deliberate mismatch, controlled by -match-ratio. Run with:
//
//	go run testdata/generators/pairgen.go -count=500 -match-ratio=0.8
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type pairGenerator struct {
	rng        *rand.Rand
	startDate  time.Time
	endDate    time.Time
	minAmount  decimal.Decimal
	maxAmount  decimal.Decimal
	matchRatio float64
}

type row struct {
	id          string
	amount      decimal.Decimal
	date        time.Time
	description string
	externalID  string
}

var merchants = []string{
	"acme corp", "globex industries", "initech solutions", "stark supplies",
	"wayne logistics", "umbrella retail", "hooli cloud services", "vandelay imports",
}

var descriptionPrefixes = []string{
	"wire transfer", "card payment", "ach debit", "invoice payment",
	"subscription renewal", "refund", "payroll deposit",
}

func main() {
	var (
		outputDir  = flag.String("output-dir", "testdata/generated", "output directory for the CSV pair")
		count      = flag.Int("count", 500, "number of record pairs to generate")
		matchRatio = flag.Float64("match-ratio", 0.8, "fraction of pairs that are true matches")
		startDate  = flag.String("start-date", "2026-01-01", "start date (YYYY-MM-DD)")
		endDate    = flag.String("end-date", "2026-12-31", "end date (YYYY-MM-DD)")
		minAmount  = flag.Float64("min-amount", 1.00, "minimum amount")
		maxAmount  = flag.Float64("max-amount", 25000.00, "maximum amount")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "random seed for reproducible generation")
	)
	flag.Parse()

	start, err := time.Parse("2006-01-02", *startDate)
	if err != nil {
		log.Fatalf("invalid start date: %v", err)
	}
	end, err := time.Parse("2006-01-02", *endDate)
	if err != nil {
		log.Fatalf("invalid end date: %v", err)
	}
	if *matchRatio < 0 || *matchRatio > 1 {
		log.Fatalf("match ratio must be between 0 and 1, got %f", *matchRatio)
	}

	gen := &pairGenerator{
		rng:        rand.New(rand.NewSource(*seed)),
		startDate:  start,
		endDate:    end,
		minAmount:  decimal.NewFromFloat(*minAmount),
		maxAmount:  decimal.NewFromFloat(*maxAmount),
		matchRatio: *matchRatio,
	}

	left, right := gen.generate(*count)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("cannot create output directory: %v", err)
	}
	leftPath := filepath.Join(*outputDir, "left.csv")
	rightPath := filepath.Join(*outputDir, "right.csv")
	if err := writeCSV(leftPath, left); err != nil {
		log.Fatalf("cannot write %s: %v", leftPath, err)
	}
	if err := writeCSV(rightPath, right); err != nil {
		log.Fatalf("cannot write %s: %v", rightPath, err)
	}

	fmt.Printf("Generated %d record pairs (%.0f%% matches)\n", *count, *matchRatio*100)
	fmt.Printf("Left:  %s\n", leftPath)
	fmt.Printf("Right: %s\n", rightPath)
	fmt.Printf("Seed:  %d\n", *seed)
}

func (g *pairGenerator) generate(count int) (left, right []row) {
	left = make([]row, count)
	right = make([]row, count)

	for i := 0; i < count; i++ {
		left[i] = g.randomRow(fmt.Sprintf("SYS%06d", i+1))

		if g.rng.Float64() < g.matchRatio {
			right[i] = g.perturbedMatch(left[i], fmt.Sprintf("BNK%06d", i+1))
		} else {
			right[i] = g.randomRow(fmt.Sprintf("BNK%06d", i+1))
		}
	}
	return left, right
}

func (g *pairGenerator) randomRow(id string) row {
	duration := g.endDate.Sub(g.startDate)
	date := g.startDate.Add(time.Duration(g.rng.Int63n(int64(duration))))

	amountRange := g.maxAmount.Sub(g.minAmount)
	amount := decimal.NewFromFloat(g.rng.Float64()).Mul(amountRange).Add(g.minAmount).Round(2)

	merchant := merchants[g.rng.Intn(len(merchants))]
	prefix := descriptionPrefixes[g.rng.Intn(len(descriptionPrefixes))]

	return row{
		id:          id,
		amount:      amount,
		date:        date,
		description: prefix + " " + merchant,
		externalID:  fmt.Sprintf("INV-%d-%04d", date.Year(), g.rng.Intn(10000)),
	}
}

// perturbedMatch derives a counterpart that should still match: small
// amount drift, a date shift of at most three days, and occasional
// description rewording. External ids are kept intact most of the time.
func (g *pairGenerator) perturbedMatch(base row, id string) row {
	out := base
	out.id = id

	switch g.rng.Intn(4) {
	case 0:
		// identical counterpart
	case 1:
		driftCents := g.rng.Int63n(200) - 100
		out.amount = base.amount.Add(decimal.New(driftCents, -2))
	case 2:
		out.date = base.date.AddDate(0, 0, g.rng.Intn(3)+1)
	default:
		out.description = rewordDescription(g.rng, base.description)
	}

	if g.rng.Float64() < 0.1 {
		out.externalID = ""
	}
	return out
}

func rewordDescription(rng *rand.Rand, desc string) string {
	tokens := strings.Fields(desc)
	switch rng.Intn(3) {
	case 0:
		return strings.ToUpper(desc)
	case 1:
		return desc + " ref"
	default:
		if len(tokens) > 1 {
			return strings.Join(tokens[1:], " ")
		}
		return desc
	}
}

func writeCSV(path string, rows []row) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"id", "amount", "date", "description", "external_id"}); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.id,
			r.amount.String(),
			r.date.Format(time.RFC3339),
			r.description,
			r.externalID,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return nil
}
