package interpreter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/expense-ledger-bot/internal/config"
)

func testLedgerConfig() *config.LedgerConfig {
	return &config.LedgerConfig{
		Backend:          config.LedgerBackendSheets,
		Currency:         "JPY",
		HomeCurrency:     "TWD",
		TimezoneOffset:   9,
		DeleteKeyword:    "刪除",
		TotalKeywords:    []string{"查詢", "總計"},
		TodayKeyword:     "今天",
		YesterdayKeyword: "昨天",
	}
}

// newTestClassifier pins the classifier clock to 2023-11-27 10:00 UTC,
// which is 19:00 the same day in the configured UTC+9 zone.
func newTestClassifier() *Classifier {
	c := NewClassifier(testLedgerConfig())
	c.now = func() time.Time {
		return time.Date(2023, 11, 27, 10, 0, 0, 0, time.UTC)
	}
	return c
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Intent
	}{
		{"DeleteKeyword", "刪除", Intent{Kind: IntentDeleteLast}},
		{"TotalKeywordPrimary", "查詢", Intent{Kind: IntentTotal}},
		{"TotalKeywordSecondary", "總計", Intent{Kind: IntentTotal}},
		{"TodayKeyword", "今天", Intent{Kind: IntentDayQuery, Date: "2023-11-27"}},
		{"YesterdayKeyword", "昨天", Intent{Kind: IntentDayQuery, Date: "2023-11-26"}},
		{"ExplicitDate", "2023-11-01", Intent{Kind: IntentDayQuery, Date: "2023-11-01"}},
		{"MalformedDate", "2023-13-99", Intent{Kind: IntentDayQuery}},
		{"MalformedDateShape", "20-3-11-99", Intent{Kind: IntentDayQuery}},
		{"Integer", "2000", Intent{Kind: IntentRecord, Amount: 2000}},
		{"Decimal", "1500.5", Intent{Kind: IntentRecord, Amount: 1500.5}},
		{"Zero", "0", Intent{Kind: IntentRecord, Amount: 0}},
		{"WhitespaceTrimmed", "  300  ", Intent{Kind: IntentRecord, Amount: 300}},
		{"NegativeNumber", "-100", Intent{Kind: IntentUnrecognized}},
		{"NotANumber", "abc", Intent{Kind: IntentUnrecognized}},
		{"NaNLiteral", "NaN", Intent{Kind: IntentUnrecognized}},
		{"InfLiteral", "Inf", Intent{Kind: IntentUnrecognized}},
		{"Empty", "", Intent{Kind: IntentUnrecognized}},
		{"Emoji", "🥺", Intent{Kind: IntentUnrecognized}},
	}

	classifier := newTestClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifier.Classify(tt.text))
		})
	}
}

func TestClassify_KeywordsWinOverNumericParsing(t *testing.T) {
	// A keyword made of digits must still classify as the command, never
	// fall through to Record.
	cfg := testLedgerConfig()
	cfg.DeleteKeyword = "42"
	c := NewClassifier(cfg)

	assert.Equal(t, Intent{Kind: IntentDeleteLast}, c.Classify("42"))
}

func TestClassify_RelativeDayCrossesMidnightInConfiguredZone(t *testing.T) {
	// 16:30 UTC is already past midnight in UTC+9.
	c := NewClassifier(testLedgerConfig())
	c.now = func() time.Time {
		return time.Date(2023, 11, 27, 16, 30, 0, 0, time.UTC)
	}

	assert.Equal(t, Intent{Kind: IntentDayQuery, Date: "2023-11-28"}, c.Classify("今天"))
	assert.Equal(t, Intent{Kind: IntentDayQuery, Date: "2023-11-27"}, c.Classify("昨天"))
}

func TestIntentKind_String(t *testing.T) {
	assert.Equal(t, "record", IntentRecord.String())
	assert.Equal(t, "delete_last", IntentDeleteLast.String())
	assert.Equal(t, "total", IntentTotal.String())
	assert.Equal(t, "day_query", IntentDayQuery.String())
	assert.Equal(t, "unrecognized", IntentUnrecognized.String())
}
