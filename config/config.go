package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// JIRA API設定
	JiraBaseURL      string
	JiraToken        string
	AssigneeUsername string

	// 親イシューキー（CSVファイル名によって選択される）
	MaintenanceParentKey string
	DevelopParentKey     string
}

// LoadConfig は環境変数から設定を読み込みます
// JIRA_TOKEN が未設定の場合はエラーを返します
func LoadConfig() (*Config, error) {
	// .envファイルを読み込む
	_ = godotenv.Load()

	config := &Config{
		JiraBaseURL:          strings.TrimRight(getEnvWithDefault("JIRA_BASE_URL", "https://jira.avakatan.ir"), "/"),
		JiraToken:            os.Getenv("JIRA_TOKEN"),
		AssigneeUsername:     getEnvWithDefault("ASSIGNEE_USERNAME", "a.kamrani"),
		MaintenanceParentKey: getEnvWithDefault("MAINTENANCE_PARENT_ISSUE_KEY", "BM-5610"),
		DevelopParentKey:     getEnvWithDefault("DEVELOP_PARENT_ISSUE_KEY", "BM-5611"),
	}

	if config.JiraToken == "" {
		return nil, fmt.Errorf("環境変数 JIRA_TOKEN が設定されていません")
	}

	return config, nil
}

// デフォルト値付きで環境変数を取得
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
