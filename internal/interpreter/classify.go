// Package interpreter contains the command interpreter and ledger
// aggregation engine: it classifies free-text chat input into an intent,
// mutates or queries the append-only transaction log, and computes
// date-scoped and whole-history aggregates with currency conversion applied
// at the correct point in time.
package interpreter

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/expense-ledger-bot/internal/config"
)

const dateLayout = "2006-01-02"

// IntentKind enumerates the closed set of command intents.
type IntentKind int

const (
	IntentUnrecognized IntentKind = iota
	IntentRecord
	IntentDeleteLast
	IntentTotal
	IntentDayQuery
)

func (k IntentKind) String() string {
	switch k {
	case IntentRecord:
		return "record"
	case IntentDeleteLast:
		return "delete_last"
	case IntentTotal:
		return "total"
	case IntentDayQuery:
		return "day_query"
	default:
		return "unrecognized"
	}
}

// Intent is the classified meaning of one inbound message.
type Intent struct {
	Kind   IntentKind
	Amount float64 // set for IntentRecord
	Date   string  // set for IntentDayQuery; empty when the explicit date was malformed
}

// Classifier turns raw message text into an Intent using the configured
// command keywords. Relative day keywords resolve against the configured
// timezone's current date.
type Classifier struct {
	deleteKeyword    string
	totalKeywords    []string
	todayKeyword     string
	yesterdayKeyword string
	location         *time.Location
	now              func() time.Time
}

// NewClassifier builds a classifier from the ledger keyword configuration.
func NewClassifier(cfg *config.LedgerConfig) *Classifier {
	return &Classifier{
		deleteKeyword:    cfg.DeleteKeyword,
		totalKeywords:    cfg.TotalKeywords,
		todayKeyword:     cfg.TodayKeyword,
		yesterdayKeyword: cfg.YesterdayKeyword,
		location:         cfg.Location(),
		now:              time.Now,
	}
}

// Classify applies the command rules in priority order: delete keyword,
// total keywords, day keywords or an explicit YYYY-MM-DD date, then numeric
// parsing. Keywords are checked before numeric parsing so keyword inputs
// never fall through to a parse failure. Unrecognized input is a legitimate
// terminal intent, not a classifier error.
func (c *Classifier) Classify(text string) Intent {
	msg := strings.TrimSpace(text)

	if msg == c.deleteKeyword {
		return Intent{Kind: IntentDeleteLast}
	}
	for _, kw := range c.totalKeywords {
		if msg == kw {
			return Intent{Kind: IntentTotal}
		}
	}

	nowLocal := c.now().In(c.location)
	switch {
	case msg == c.todayKeyword:
		return Intent{Kind: IntentDayQuery, Date: nowLocal.Format(dateLayout)}
	case msg == c.yesterdayKeyword:
		return Intent{Kind: IntentDayQuery, Date: nowLocal.AddDate(0, 0, -1).Format(dateLayout)}
	case looksLikeDate(msg):
		if _, err := time.Parse(dateLayout, msg); err != nil {
			// Date-shaped but invalid: the interpreter replies with a
			// format error instead of treating this as a failed number.
			return Intent{Kind: IntentDayQuery}
		}
		return Intent{Kind: IntentDayQuery, Date: msg}
	}

	amount, err := strconv.ParseFloat(msg, 64)
	if err != nil || amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Intent{Kind: IntentUnrecognized}
	}
	return Intent{Kind: IntentRecord, Amount: amount}
}

// looksLikeDate reports whether the text has the 10-character two-dash shape
// of a YYYY-MM-DD date, whether or not it parses.
func looksLikeDate(s string) bool {
	return len(s) == 10 && strings.Count(s, "-") == 2
}
