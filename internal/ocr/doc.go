// Package ocr reads chat text off the screen. It optionally brings the chat
// application to the front, screenshots a fixed region and runs tesseract on
// the image. It targets macOS (osascript and screencapture).
package ocr
