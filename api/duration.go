package api

import (
	"regexp"
	"strconv"
	"strings"
)

// 時間表記の各単位にマッチする正規表現
var (
	hoursPattern   = regexp.MustCompile(`(\d+)h`)
	minutesPattern = regexp.MustCompile(`(\d+)m`)
	daysPattern    = regexp.MustCompile(`(\d+)d`)
	weeksPattern   = regexp.MustCompile(`(\d+)w`)
)

// 1日は8時間、1週は5日として換算します
const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 8 * secondsPerHour
	secondsPerWeek   = 5 * secondsPerDay
)

// ParseTimeEstimate はJIRA形式の時間表記 ("2h"、"1d 4h 30m" など) を
// 秒数に変換します。解析できない場合は 0 を返します
func ParseTimeEstimate(timeStr string) int {
	timeStr = strings.ToLower(strings.ReplaceAll(timeStr, " ", ""))

	totalSeconds := 0

	if m := hoursPattern.FindStringSubmatch(timeStr); m != nil {
		hours, _ := strconv.Atoi(m[1])
		totalSeconds += hours * secondsPerHour
	}
	if m := minutesPattern.FindStringSubmatch(timeStr); m != nil {
		minutes, _ := strconv.Atoi(m[1])
		totalSeconds += minutes * secondsPerMinute
	}
	if m := daysPattern.FindStringSubmatch(timeStr); m != nil {
		days, _ := strconv.Atoi(m[1])
		totalSeconds += days * secondsPerDay
	}
	if m := weeksPattern.FindStringSubmatch(timeStr); m != nil {
		weeks, _ := strconv.Atoi(m[1])
		totalSeconds += weeks * secondsPerWeek
	}

	return totalSeconds
}
