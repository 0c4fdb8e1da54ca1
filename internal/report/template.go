package report

const htmlTpl = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Hacker News 摘要</title>
    <style>
        body {
            font-family: "Microsoft JhengHei", Arial, sans-serif;
            margin: 40px auto;
            max-width: 800px;
            padding: 0 20px;
            line-height: 1.6;
            background-color: #f5f5f5;
        }
        .header {
            text-align: center;
            padding: 20px 0;
            background-color: #fff;
            border-radius: 8px;
            margin-bottom: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .news-item {
            background-color: #fff;
            border-radius: 8px;
            padding: 20px;
            margin-bottom: 20px;
            box-shadow: 0 2px 4px rgba(0,0,0,0.1);
        }
        .news-title {
            margin-bottom: 10px;
        }
        .news-title a {
            color: #2c3e50;
            font-size: 22px;
            font-weight: bold;
            text-decoration: none;
            transition: color 0.3s ease;
        }
        .news-title a:hover {
            color: #3498db;
        }
        .news-summary {
            color: #444;
            background-color: #f9f9f9;
            padding: 15px;
            border-radius: 5px;
            margin-top: 10px;
        }
        .news-summary p:first-child {
            margin-top: 0;
        }
        .generation-info {
            color: #666;
            font-size: 14px;
            text-align: center;
            margin-top: 10px;
        }
    </style>
</head>
<body>
    <div class="header">
        <h1>Hacker News 摘要</h1>
        <div class="generation-info">生成时间： {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</div>
    </div>
{{range .Items}}
    <div class="news-item">
        <div class="news-title">
            <a href="{{.Link}}" target="_blank">{{.Title}}</a>
        </div>
        <div class="news-summary">
            {{.Summary}}
        </div>
    </div>
{{end}}
</body>
</html>
`
