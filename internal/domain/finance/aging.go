package finance

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AgingBucket indexes the five fixed days-past-due windows
type AgingBucket int

const (
	BucketCurrent AgingBucket = iota
	Bucket1To30
	Bucket31To60
	Bucket61To90
	BucketOver90

	bucketCount = 5
)

var bucketLabels = [bucketCount]string{"current", "1-30", "31-60", "61-90", "90+"}

func (b AgingBucket) String() string {
	if b < 0 || int(b) >= bucketCount {
		return "unknown"
	}
	return bucketLabels[b]
}

// BucketFor maps days past due to its bucket
func BucketFor(daysPast int) AgingBucket {
	switch {
	case daysPast <= 0:
		return BucketCurrent
	case daysPast <= 30:
		return Bucket1To30
	case daysPast <= 60:
		return Bucket31To60
	case daysPast <= 90:
		return Bucket61To90
	default:
		return BucketOver90
	}
}

// DaysPast counts whole calendar days from due to asOf, in due's location
func DaysPast(due, asOf time.Time) int {
	loc := due.Location()
	d := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC)
	a := asOf.In(loc)
	at := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	return int(at.Sub(d).Hours() / 24)
}

// BucketTotal accumulates the documents of one bucket
type BucketTotal struct {
	Bucket AgingBucket     `json:"bucket"`
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// PartyAging is the bucket split of one customer or supplier
type PartyAging struct {
	PartyID   uuid.UUID                `json:"party_id"`
	PartyName string                   `json:"party_name"`
	Buckets   [bucketCount]BucketTotal `json:"buckets"`
	Total     decimal.Decimal          `json:"total"`
}

// AgingReport is the outcome of ComputeAging
type AgingReport struct {
	AsOf    time.Time                `json:"as_of"`
	Kind    DocumentKind             `json:"kind"`
	Buckets [bucketCount]BucketTotal `json:"buckets"`
	Total   decimal.Decimal          `json:"total"`
	Count   int                      `json:"count"`
	Parties []PartyAging             `json:"parties,omitempty"`
}

// AgingOptions narrows the computation
type AgingOptions struct {
	Kind    DocumentKind
	PartyID *uuid.UUID
	ByParty bool
}

func emptyBuckets() [bucketCount]BucketTotal {
	var b [bucketCount]BucketTotal
	for i := range b {
		b[i] = BucketTotal{Bucket: AgingBucket(i), Label: bucketLabels[i], Amount: decimal.Zero}
	}
	return b
}

// ComputeAging buckets open documents by days past due. Only documents with
// a positive outstanding amount that are not cancelled contribute; drafts are
// not yet receivable and are skipped as well.
func ComputeAging(docs []Document, asOf time.Time, opts AgingOptions) AgingReport {
	report := AgingReport{AsOf: asOf, Kind: opts.Kind, Buckets: emptyBuckets(), Total: decimal.Zero}
	parties := make(map[uuid.UUID]*PartyAging)

	for i := range docs {
		d := &docs[i]
		if opts.Kind != "" && d.Kind != opts.Kind {
			continue
		}
		if opts.PartyID != nil && d.PartyID != *opts.PartyID {
			continue
		}
		if d.Status == StatusCancelled || d.Status == StatusDraft || !d.OutstandingAmount.IsPositive() {
			continue
		}

		b := BucketFor(DaysPast(d.EffectiveDueDate(), asOf))
		report.Buckets[b].Amount = report.Buckets[b].Amount.Add(d.OutstandingAmount)
		report.Buckets[b].Count++
		report.Total = report.Total.Add(d.OutstandingAmount)
		report.Count++

		if opts.ByParty {
			p, ok := parties[d.PartyID]
			if !ok {
				p = &PartyAging{PartyID: d.PartyID, PartyName: d.PartyName, Buckets: emptyBuckets(), Total: decimal.Zero}
				parties[d.PartyID] = p
			}
			p.Buckets[b].Amount = p.Buckets[b].Amount.Add(d.OutstandingAmount)
			p.Buckets[b].Count++
			p.Total = p.Total.Add(d.OutstandingAmount)
		}
	}

	for _, p := range parties {
		report.Parties = append(report.Parties, *p)
	}
	sort.Slice(report.Parties, func(i, j int) bool {
		if !report.Parties[i].Total.Equal(report.Parties[j].Total) {
			return report.Parties[i].Total.GreaterThan(report.Parties[j].Total)
		}
		return report.Parties[i].PartyName < report.Parties[j].PartyName
	})
	return report
}
