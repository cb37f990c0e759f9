package models

// CSVRecord はCSVの1行を表します (ヘッダー名→値のマップ)
type CSVRecord map[string]string

// ProjectInfo はJIRAプロジェクトから解決したID群を表します
// 初回のAPI呼び出しで解決され、実行中はキャッシュされます
type ProjectInfo struct {
	ID                 string // プロジェクトID
	DevOpsComponentID  string // "DevOps" コンポーネントのID (存在しない場合は空)
	SubtaskIssueTypeID string // "Sub-task" イシュータイプのID (存在しない場合は空)
}

// Transition はイシューに対して実行可能なステータス遷移を表します
// JIRAが返す順序を保持します
type Transition struct {
	ID   string
	Name string
}
