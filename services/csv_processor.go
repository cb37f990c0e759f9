package services

import (
	"encoding/csv"
	"fmt"
	"os"

	"jirasubtask/models"
	"jirasubtask/utils"
)

// タスクCSVに必須のカラム
var requiredColumns = []string{"Summary", "Original Estimate"}

// CSVProcessor はタスクCSVファイルの読み込みを担当します
type CSVProcessor struct{}

// NewCSVProcessor は新しいCSVプロセッサーを作成します
func NewCSVProcessor() *CSVProcessor {
	return &CSVProcessor{}
}

// ReadTaskCSV はタスクCSVを読み込み、ヘッダー行をキーとしたレコードの一覧を返します
// フィールド数がヘッダーと一致しない行も、読み取れた範囲で返します
func (p *CSVProcessor) ReadTaskCSV(filePath string) ([]models.CSVRecord, error) {
	utils.LogInfo("タスクCSVファイル '%s' を読み込みます", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("CSVオープンエラー: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("CSV読み込みエラー: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	rows := records[1:]

	// データ行がある場合のみ必須カラムを検証する
	if len(rows) > 0 {
		if err := validateColumns(headers); err != nil {
			return nil, err
		}
	}

	result := make([]models.CSVRecord, 0, len(rows))

	for _, record := range rows {
		rowData := make(models.CSVRecord)
		for j := 0; j < min(len(headers), len(record)); j++ {
			rowData[headers[j]] = record[j]
		}
		result = append(result, rowData)
	}

	utils.LogInfo("タスクCSVを読み込みました: %d 行", len(result))
	return result, nil
}

// validateColumns は必須カラムの存在を確認します
func validateColumns(headers []string) error {
	for _, required := range requiredColumns {
		found := false
		for _, header := range headers {
			if header == required {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("必須カラム '%s' がCSVにありません", required)
		}
	}
	return nil
}

// min は２つの整数の小さい方を返します
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
