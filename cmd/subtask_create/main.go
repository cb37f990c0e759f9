package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"jirasubtask/api"
	"jirasubtask/config"
	"jirasubtask/services"
	"jirasubtask/utils"
)

func main() {
	// コマンドラインフラグの定義
	help := flag.Bool("help", false, "ヘルプを表示する")

	// フラグのパース
	flag.Parse()

	// ヘルプフラグが指定された場合はヘルプを表示
	if *help {
		printHelp()
		return
	}

	// 入力ファイルは位置引数でちょうど1つ指定する
	if flag.NArg() != 1 {
		printHelp()
		os.Exit(1)
	}
	inputFile := flag.Arg(0)

	// 予期しないエラーでもスタックトレースを残して終了する
	defer func() {
		if r := recover(); r != nil {
			utils.LogError("予期しないエラーが発生しました: %v", r)
			utils.LogStack()
			os.Exit(1)
		}
	}()

	// 開始時間の記録
	startTime := time.Now()

	// 設定の読み込み
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.LogError("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	utils.LogInfo("JIRAサブタスク作成ツール (v1.0.0)")
	utils.LogInfo("接続先: %s", cfg.JiraBaseURL)

	// 必要なサービスの初期化
	jiraClient := api.NewJiraClient(cfg)
	csvProc := services.NewCSVProcessor()
	subtaskService := services.NewSubtaskService(cfg, jiraClient, csvProc)

	// タスクの処理
	if err := subtaskService.ProcessTasks(inputFile); err != nil {
		utils.LogError("サブタスク作成処理に失敗しました: %v", err)
		os.Exit(1)
	}

	// 合計実行時間の表示
	elapsed := time.Since(startTime)
	utils.LogInfo("すべての処理が完了しました。合計実行時間: %s", elapsed)
}

// ヘルプメッセージを表示する関数
func printHelp() {
	fmt.Printf(`
JIRAサブタスク作成ツール

CSVファイルの各行について、親イシューの下にサブタスクを作成し、
作業ログを記録してステータスを完了に変更します。
親イシューはCSVファイル名から自動的に決定されます:
  - ファイル名に 'maintenance' を含む場合はメンテナンス用の親イシュー
  - ファイル名に 'develop' を含む場合は開発用の親イシュー

使用方法:
  %s [オプション] <input_file.csv>

オプション:
  -help               このヘルプを表示する

環境変数:
  JIRA_BASE_URL                 JIRAのベースURL (デフォルト: https://jira.avakatan.ir)
  JIRA_TOKEN                    JIRA APIトークン (必須)
  ASSIGNEE_USERNAME             サブタスクの担当者 (デフォルト: a.kamrani)
  MAINTENANCE_PARENT_ISSUE_KEY  メンテナンスタスクの親イシューキー (デフォルト: BM-5610)
  DEVELOP_PARENT_ISSUE_KEY      開発タスクの親イシューキー (デフォルト: BM-5611)

例:
  # メンテナンスタスクのサブタスクを作成
  %s maintenance-subtasks.csv

  # 開発タスクのサブタスクを作成
  %s develop-subtasks.csv
`, os.Args[0], os.Args[0], os.Args[0])
}
