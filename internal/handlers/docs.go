package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/russross/blackfriday/v2"
)

type DocsHandler struct{}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

// ServeMarkdownAsHTML serves Markdown files as HTML with consistent styling
func (h *DocsHandler) ServeMarkdownAsHTML(c *gin.Context) {
	docName := c.Param("doc")
	if docName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document name required"})
		return
	}

	// Security: Only allow specific documentation files
	allowedDocs := map[string]string{
		"README":   "README.md",
		"API":      "API.md",
		"MODELING": "MODELING.md",
	}

	fileName, exists := allowedDocs[docName]
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	content, err := os.ReadFile(filepath.Join(".", fileName))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
		return
	}

	// Convert Markdown to HTML
	extensions := blackfriday.CommonExtensions | blackfriday.AutoHeadingIDs
	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags,
	})
	htmlContent := blackfriday.Run(content, blackfriday.WithRenderer(renderer), blackfriday.WithExtensions(extensions))

	html := h.wrapWithTheme(string(htmlContent), getDocumentTitle(docName))
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}

// getDocumentTitle returns a human-readable title for the document
func getDocumentTitle(docName string) string {
	titles := map[string]string{
		"README":   "Project Overview",
		"API":      "API Reference",
		"MODELING": "Topic Modeling Guide",
	}

	if title, exists := titles[docName]; exists {
		return title
	}
	return strings.ReplaceAll(docName, "_", " ")
}

// wrapWithTheme wraps the HTML content with consistent styling
func (h *DocsHandler) wrapWithTheme(content, title string) string {
	return `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>` + title + ` - VeritaScope</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, sans-serif;
            line-height: 1.6;
            color: #333;
            background: #f8f9fa;
            padding: 20px;
        }

        .container {
            max-width: 1000px;
            margin: 0 auto;
        }

        .header {
            background: linear-gradient(135deg, #0f766e 0%, #14b8a6 100%);
            color: white;
            padding: 2rem;
            margin-bottom: 2rem;
            border-radius: 12px;
            text-align: center;
        }

        .header h1 {
            font-size: 2.2rem;
            margin-bottom: 0.5rem;
            font-weight: 700;
        }

        .content {
            background: white;
            padding: 3rem;
            border-radius: 12px;
            box-shadow: 0 2px 10px rgba(0,0,0,0.1);
            border: 1px solid #e5e7eb;
        }

        .content h1, .content h2, .content h3 {
            color: #1f2937;
            margin-top: 2rem;
            margin-bottom: 1rem;
            font-weight: 600;
        }

        .content h1 {
            font-size: 2rem;
            border-bottom: 2px solid #e5e7eb;
            padding-bottom: 0.5rem;
            margin-top: 0;
        }

        .content h2 {
            font-size: 1.5rem;
            color: #0f766e;
        }

        .content p {
            margin-bottom: 1rem;
        }

        .content code {
            background: #f3f4f6;
            padding: 0.2rem 0.4rem;
            border-radius: 4px;
            font-size: 0.9em;
        }

        .content pre {
            background: #1f2937;
            color: #f9fafb;
            padding: 1rem;
            border-radius: 8px;
            overflow-x: auto;
            margin-bottom: 1rem;
        }

        .content pre code {
            background: none;
            padding: 0;
        }

        .content ul, .content ol {
            margin-bottom: 1rem;
            padding-left: 2rem;
        }

        .content table {
            border-collapse: collapse;
            margin-bottom: 1rem;
            width: 100%;
        }

        .content th, .content td {
            border: 1px solid #e5e7eb;
            padding: 0.5rem 0.75rem;
            text-align: left;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>` + title + `</h1>
        </div>
        <div class="content">` + content + `</div>
    </div>
</body>
</html>`
}
