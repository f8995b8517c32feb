package interpreter

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/expense-ledger-bot/internal/domain/ledger"
	"github.com/expense-ledger-bot/internal/domain/rate"
)

// Fixed reply texts, kept in the chat language of the original bot.
const (
	replyEmptyDelete  = "目前沒有可以刪除的記錄喔！"
	replyBadDate      = "日期格式錯誤，請輸入 YYYY-MM-DD"
	replyUnrecognized = "看不懂這個指令喔 🥺"
)

// formatAmount renders a monetary amount with thousands separators and zero
// decimal places, e.g. 2000 -> "2,000".
func formatAmount(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

// formatRate renders a rate with its native precision.
func formatRate(r float64) string {
	return strconv.FormatFloat(r, 'g', -1, 64)
}

func (i *Interpreter) recordReply(tx *ledger.Transaction) string {
	return fmt.Sprintf("✅ 已記錄這筆消費：\n🇯🇵 %s %s\n🇹🇼 約 %s %s\n(匯率 %s)",
		formatAmount(tx.ForeignAmount), i.currency,
		formatAmount(tx.ConvertedAmount), i.homeCurrency,
		formatRate(tx.Rate))
}

func (i *Interpreter) deleteReply(removed *ledger.Transaction) string {
	return fmt.Sprintf("🗑️ 已刪除最後一筆記錄：\n%s - %s %s",
		removed.Timestamp, formatAmount(removed.ForeignAmount), i.currency)
}

func (i *Interpreter) totalReply(totalForeign, totalConverted float64, quote *rate.Quote) string {
	return fmt.Sprintf("📊 目前帳本總計：\n🇯🇵 累積日幣：%s 円\n🇹🇼 換算台幣：%s 元\n(匯率 %s)",
		formatAmount(totalForeign), formatAmount(totalConverted), formatRate(quote.Rate))
}

func (i *Interpreter) daySummaryReply(targetDate string, summary DaySummary) string {
	if summary.Count == 0 {
		return fmt.Sprintf("📅 %s\n\n這一天沒有任何記帳紀錄喔！", targetDate)
	}
	return fmt.Sprintf("📅 %s 消費統計：\n──────────\n🔢 筆數：%d 筆\n🇯🇵 日幣：%s 円\n🇹🇼 台幣：%s 元",
		targetDate, summary.Count,
		formatAmount(summary.ForeignTotal), formatAmount(summary.ConvertedTotal))
}

func failureReply(err error) string {
	return fmt.Sprintf("發生錯誤：%s", err.Error())
}
