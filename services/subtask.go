package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"jirasubtask/api"
	"jirasubtask/config"
	"jirasubtask/utils"
)

// 連続リクエストの間隔 (レート制限を避けるため)
const (
	defaultCreateDelay  = 2 * time.Second
	defaultWorklogDelay = 2 * time.Second
	defaultTaskDelay    = 3 * time.Second
)

// SubtaskService はCSVのタスクからJIRAサブタスクの作成を処理します
type SubtaskService struct {
	config     *config.Config
	jiraClient *api.JiraClient
	csvProc    *CSVProcessor

	// リクエスト間の待ち時間 (テストからは短縮できます)
	createDelay  time.Duration
	worklogDelay time.Duration
	taskDelay    time.Duration
}

// NewSubtaskService は新しいサブタスク作成サービスを作成します
func NewSubtaskService(cfg *config.Config, jiraClient *api.JiraClient, csvProc *CSVProcessor) *SubtaskService {
	return &SubtaskService{
		config:       cfg,
		jiraClient:   jiraClient,
		csvProc:      csvProc,
		createDelay:  defaultCreateDelay,
		worklogDelay: defaultWorklogDelay,
		taskDelay:    defaultTaskDelay,
	}
}

// DetermineParentIssueKey はCSVファイル名から親イシューのキーを決定します
// パス全体を小文字で比較し、'maintenance' を 'develop' より優先します
func (s *SubtaskService) DetermineParentIssueKey(csvFilename string) string {
	filenameLower := strings.ToLower(csvFilename)

	if strings.Contains(filenameLower, "maintenance") {
		utils.LogInfo("メンテナンスタスクを検出しました。親イシュー: %s", s.config.MaintenanceParentKey)
		return s.config.MaintenanceParentKey
	}

	if strings.Contains(filenameLower, "develop") {
		utils.LogInfo("開発タスクを検出しました。親イシュー: %s", s.config.DevelopParentKey)
		return s.config.DevelopParentKey
	}

	utils.LogInfo("ファイル名が 'maintenance' にも 'develop' にも一致しません。メンテナンス用の親イシューを使用します: %s", s.config.MaintenanceParentKey)
	return s.config.MaintenanceParentKey
}

// ProcessTasks は入力CSVの全タスクを処理します
// 各行についてサブタスク作成 → 作業ログ記録 → 完了ステータスへの変更を順に行います
// 行単位の失敗は記録して続行し、接続エラーなど実行全体に関わる失敗のみエラーを返します
func (s *SubtaskService) ProcessTasks(inputFile string) error {
	startTime := time.Now()
	defer utils.TrackTime(startTime, "サブタスク作成処理")

	if _, err := os.Stat(inputFile); err != nil {
		return fmt.Errorf("入力ファイル %s が見つかりません: %w", inputFile, err)
	}

	// ファイル名から親イシューを決定
	parentKey := s.DetermineParentIssueKey(inputFile)

	// 最初に接続を確認
	utils.LogInfo("JIRAへの接続を確認しています...")
	if err := s.jiraClient.VerifyConnection(); err != nil {
		return fmt.Errorf("JIRA接続エラー: %w", err)
	}

	records, err := s.csvProc.ReadTaskCSV(inputFile)
	if err != nil {
		return fmt.Errorf("タスクCSV読み込みエラー: %w", err)
	}

	var createdTasks []string

	for i, record := range records {
		summary := strings.TrimSpace(record["Summary"])
		originalEstimate := strings.TrimSpace(record["Original Estimate"])

		if summary == "" || originalEstimate == "" {
			utils.LogWarn("行 %d: データが不足しているためスキップします", i+2)
			continue
		}

		utils.LogInfo("処理中: %s", summary)

		issueKey, err := s.jiraClient.CreateSubtask(parentKey, summary, originalEstimate)
		if err != nil {
			utils.LogError("行 %d の処理に失敗: %v", i+2, err)
		} else {
			createdTasks = append(createdTasks, issueKey)

			// 作業ログ記録の前に少し待つ
			time.Sleep(s.createDelay)

			if err := s.jiraClient.LogWork(issueKey, originalEstimate, summary); err != nil {
				utils.LogError("作業ログ記録失敗 %s: %v", issueKey, err)
			} else {
				// ステータス変更の前に少し待つ
				time.Sleep(s.worklogDelay)

				if err := s.jiraClient.SetStatusDone(issueKey); err != nil {
					utils.LogWarn("ステータス変更失敗 %s: %v", issueKey, err)
				}
			}
		}

		// レート制限を避けるためタスク間で待つ
		time.Sleep(s.taskDelay)
	}

	utils.LogInfo("処理が完了しました。作成したサブタスク: %d 件", len(createdTasks))
	for _, task := range createdTasks {
		utils.LogInfo("  - %s", task)
	}

	return nil
}
