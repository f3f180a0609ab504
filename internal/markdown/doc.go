// Package markdown loads Markdown pages with front matter and renders them
// to HTML through goldmark, including the icon task list markers.
package markdown
