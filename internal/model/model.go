package model

// Article RSS 源中的一条文章
type Article struct {
	Title string
	URL   string
}

// SummarizedArticle 完成摘要的文章，用于报告渲染
type SummarizedArticle struct {
	Title   string
	Link    string
	Summary string
}
