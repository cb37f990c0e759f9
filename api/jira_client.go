package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"jirasubtask/config"
	"jirasubtask/models"
	"jirasubtask/utils"
)

// サブタスク作成先プロジェクトの固定値
const (
	projectKey      = "BM"
	componentName   = "DevOps"
	subtaskTypeName = "Sub-task"
	subtaskLabel    = "DevOps"
)

// Basic認証フォールバックで使用する認証情報
const (
	basicAuthUsername = "a.kamrani"
	basicAuthEmail    = "a.kamrani@domil.io"
)

// 作業ログの開始時刻フォーマット (テヘランタイムゾーン固定)
const (
	worklogTimeLayout = "2006-01-02T15:04:05"
	worklogTimeSuffix = ".000+0330"
)

// 認証失敗時に表示するレスポンスボディの最大長
const authErrorBodyLimit = 500

// doneTransitionNames は完了として扱うトランジション名です (小文字で比較)
var doneTransitionNames = []string{"done", "complete", "closed"}

// authMethod はJIRAへの認証方式を表します
type authMethod int

const (
	authBearer authMethod = iota
	authBasicUsername
	authBasicEmail
)

// String は認証方式のログ表示用の名前を返します
func (m authMethod) String() string {
	switch m {
	case authBearer:
		return "Bearerトークン認証"
	case authBasicUsername:
		return "Basic認証（ユーザー名）"
	case authBasicEmail:
		return "Basic認証（メールアドレス）"
	}
	return "不明な認証方式"
}

// JiraClient はJIRA APIとのやり取りを処理します
type JiraClient struct {
	config     *config.Config
	client     *http.Client
	authMethod authMethod

	// プロジェクト情報のキャッシュ (初回解決後に再利用)
	projectInfo *models.ProjectInfo
}

// NewJiraClient は新しいJIRAクライアントを作成します
func NewJiraClient(cfg *config.Config) *JiraClient {
	return &JiraClient{
		config: cfg,
		client: &http.Client{},
	}
}

// applyAuth はリクエストに認証ヘッダーを設定します
func (j *JiraClient) applyAuth(req *http.Request, method authMethod) {
	switch method {
	case authBearer:
		req.Header.Set("Authorization", "Bearer "+j.config.JiraToken)
	case authBasicUsername:
		req.SetBasicAuth(basicAuthUsername, j.config.JiraToken)
	case authBasicEmail:
		req.SetBasicAuth(basicAuthEmail, j.config.JiraToken)
	}
}

// VerifyConnection はJIRAへの接続と認証を確認します
// Bearerトークン → Basic認証（ユーザー名）→ Basic認証（メールアドレス）の
// 順に試し、最初に成功した認証方式を以降のリクエストで使用します
func (j *JiraClient) VerifyConnection() error {
	url := fmt.Sprintf("%s/rest/api/2/myself", j.config.JiraBaseURL)

	methods := []authMethod{authBearer, authBasicUsername, authBasicEmail}

	var lastStatus int
	var lastBody string

	for i, method := range methods {
		if i > 0 {
			utils.LogWarn("%s が失敗しました。%s を試します...", methods[i-1], method)
		}

		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return fmt.Errorf("リクエスト作成エラー: %w", err)
		}

		j.applyAuth(req, method)
		req.Header.Set("Content-Type", "application/json")

		resp, err := j.client.Do(req)
		if err != nil {
			return fmt.Errorf("リクエスト送信エラー: %w", err)
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var user map[string]interface{}
			if err := json.Unmarshal(body, &user); err != nil {
				return fmt.Errorf("レスポンス解析エラー: %w", err)
			}

			displayName, _ := user["displayName"].(string)
			emailAddress, _ := user["emailAddress"].(string)
			utils.LogInfo("接続ユーザー: %s (%s)", displayName, emailAddress)

			j.authMethod = method
			return nil
		}

		lastStatus = resp.StatusCode
		lastBody = truncateBody(body)
	}

	return fmt.Errorf("すべての認証方式が失敗しました (ステータス: %d): %s", lastStatus, lastBody)
}

// GetProjectInfo はプロジェクト情報を取得し、プロジェクトID・DevOpsコンポーネントID・
// サブタスクイシュータイプIDを解決します。2回目以降の呼び出しではキャッシュを返します
func (j *JiraClient) GetProjectInfo() (*models.ProjectInfo, error) {
	if j.projectInfo != nil {
		return j.projectInfo, nil
	}

	url := fmt.Sprintf("%s/rest/api/2/project/%s", j.config.JiraBaseURL, projectKey)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	j.applyAuth(req, j.authMethod)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("リクエスト送信エラー: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("プロジェクト情報取得失敗 (ステータス: %d): %s", resp.StatusCode, string(body))
	}

	var project map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return nil, fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	id, ok := project["id"].(string)
	if !ok {
		return nil, fmt.Errorf("プロジェクトIDが見つかりません")
	}

	info := &models.ProjectInfo{ID: id}
	utils.LogInfo("プロジェクトID: %s", info.ID)

	// DevOpsコンポーネントのIDを探す
	if components, ok := project["components"].([]interface{}); ok {
		for _, c := range components {
			component, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			if component["name"] == componentName {
				if componentID, ok := component["id"].(string); ok {
					info.DevOpsComponentID = componentID
					utils.LogInfo("%sコンポーネントID: %s", componentName, componentID)
				}
				break
			}
		}
	}

	// サブタスクのイシュータイプIDを探す
	if issueTypes, ok := project["issueTypes"].([]interface{}); ok {
		for _, t := range issueTypes {
			issueType, ok := t.(map[string]interface{})
			if !ok {
				continue
			}
			if issueType["name"] == subtaskTypeName {
				if typeID, ok := issueType["id"].(string); ok {
					info.SubtaskIssueTypeID = typeID
					utils.LogInfo("サブタスクイシュータイプID: %s", typeID)
				}
				break
			}
		}
	}

	j.projectInfo = info
	return info, nil
}

// CreateSubtask は親イシューの下にサブタスクを作成し、作成されたイシューのキーを返します
// 見積もり時間が解析できる場合のみタイムトラッキングを設定します
func (j *JiraClient) CreateSubtask(parentKey, summary, originalEstimate string) (string, error) {
	info, err := j.GetProjectInfo()
	if err != nil {
		return "", fmt.Errorf("プロジェクト情報取得エラー: %w", err)
	}

	fields := map[string]interface{}{
		"project":   map[string]string{"id": info.ID},
		"parent":    map[string]string{"key": parentKey},
		"issuetype": map[string]string{"id": info.SubtaskIssueTypeID},
		"summary":   summary,
		"assignee":  map[string]string{"name": j.config.AssigneeUsername},
		"labels":    []string{subtaskLabel},
	}

	if info.DevOpsComponentID != "" {
		fields["components"] = []map[string]string{{"id": info.DevOpsComponentID}}
	}

	if ParseTimeEstimate(originalEstimate) > 0 {
		fields["timetracking"] = map[string]string{"originalEstimate": originalEstimate}
	}

	payload := map[string]interface{}{"fields": fields}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("JSONエンコードエラー: %w", err)
	}

	url := fmt.Sprintf("%s/rest/api/2/issue", j.config.JiraBaseURL)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return "", fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	j.applyAuth(req, j.authMethod)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("リクエスト送信エラー: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("サブタスク作成失敗 (ステータス: %d): %s", resp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	issueKey, ok := result["key"].(string)
	if !ok {
		return "", fmt.Errorf("イシューキーが見つかりません")
	}

	utils.LogInfo("サブタスクを作成しました: %s", issueKey)
	return issueKey, nil
}

// LogWork はイシューに作業ログを記録します
// 開始時刻は現在時刻から作業時間を引いた時刻になります
func (j *JiraClient) LogWork(issueKey, timeSpent, workDescription string) error {
	seconds := ParseTimeEstimate(timeSpent)
	if seconds == 0 {
		return fmt.Errorf("作業時間の形式が不正です: %s", timeSpent)
	}

	started := time.Now().Add(-time.Duration(seconds) * time.Second)

	payload := map[string]interface{}{
		"timeSpent": timeSpent,
		"started":   started.Format(worklogTimeLayout) + worklogTimeSuffix,
		"comment":   workDescription,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("JSONエンコードエラー: %w", err)
	}

	url := fmt.Sprintf("%s/rest/api/2/issue/%s/worklog", j.config.JiraBaseURL, issueKey)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	j.applyAuth(req, j.authMethod)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return fmt.Errorf("リクエスト送信エラー: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("作業ログ記録失敗 (ステータス: %d): %s", resp.StatusCode, string(body))
	}

	utils.LogInfo("%s に作業ログを記録しました: %s", issueKey, timeSpent)
	return nil
}

// GetTransitions はイシューで実行可能なトランジションの一覧を
// JIRAが返した順序のまま取得します
func (j *JiraClient) GetTransitions(issueKey string) ([]models.Transition, error) {
	url := fmt.Sprintf("%s/rest/api/2/issue/%s/transitions", j.config.JiraBaseURL, issueKey)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	j.applyAuth(req, j.authMethod)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("リクエスト送信エラー: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("トランジション取得失敗 (ステータス: %d): %s", resp.StatusCode, string(body))
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("レスポンス解析エラー: %w", err)
	}

	rawTransitions, ok := result["transitions"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("トランジションが見つかりません")
	}

	transitions := make([]models.Transition, 0, len(rawTransitions))

	for _, t := range rawTransitions {
		transition, ok := t.(map[string]interface{})
		if !ok {
			continue
		}

		id, ok := transition["id"].(string)
		if !ok {
			continue
		}

		name, ok := transition["name"].(string)
		if !ok {
			continue
		}

		transitions = append(transitions, models.Transition{ID: id, Name: name})
	}

	return transitions, nil
}

// SetStatusDone はイシューのステータスを完了に変更します
// Done・Complete・Closed のいずれかに一致する最初のトランジションを実行します
func (j *JiraClient) SetStatusDone(issueKey string) error {
	transitions, err := j.GetTransitions(issueKey)
	if err != nil {
		return err
	}

	var done *models.Transition
	for i := range transitions {
		if isDoneTransitionName(transitions[i].Name) {
			done = &transitions[i]
			break
		}
	}

	if done == nil {
		names := make([]string, 0, len(transitions))
		for _, t := range transitions {
			names = append(names, t.Name)
		}
		return fmt.Errorf("完了トランジションが見つかりません。実行可能なトランジション: %v", names)
	}

	payload := map[string]interface{}{
		"transition": map[string]string{
			"id": done.ID,
		},
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("JSONエンコードエラー: %w", err)
	}

	url := fmt.Sprintf("%s/rest/api/2/issue/%s/transitions", j.config.JiraBaseURL, issueKey)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("リクエスト作成エラー: %w", err)
	}

	j.applyAuth(req, j.authMethod)
	req.Header.Set("Content-Type", "application/json")

	resp, err := j.client.Do(req)
	if err != nil {
		return fmt.Errorf("リクエスト送信エラー: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ステータス更新失敗 (ステータス: %d): %s", resp.StatusCode, string(body))
	}

	utils.LogInfo("ステータスを '%s' に変更しました: %s", done.Name, issueKey)
	return nil
}

// isDoneTransitionName は完了系のトランジション名かどうかを判定します
func isDoneTransitionName(name string) bool {
	lower := strings.ToLower(name)
	for _, done := range doneTransitionNames {
		if lower == done {
			return true
		}
	}
	return false
}

// truncateBody はレスポンスボディを表示用に切り詰めます
func truncateBody(body []byte) string {
	if len(body) > authErrorBodyLimit {
		body = body[:authErrorBodyLimit]
	}
	return string(body) + "..."
}
