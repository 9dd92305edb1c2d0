package service

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
)

// RenderBoard draws the board as text with index headers taken modulo 10.
func RenderBoard(board *entity.Board) string {
	var sb strings.Builder

	sb.WriteString("   ")
	for col := 0; col < entity.BoardSize; col++ {
		fmt.Fprintf(&sb, "%d ", col%10)
	}
	sb.WriteString("\n")

	for row := 0; row < entity.BoardSize; row++ {
		fmt.Fprintf(&sb, "%d  ", row%10)
		for col := 0; col < entity.BoardSize; col++ {
			sb.WriteString(board[row][col].String())
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func systemInstruction(player entity.Cell) string {
	return fmt.Sprintf(`You are a grandmaster Gomoku (five-in-a-row) engine.
The board is %[1]dx%[1]d. A player wins with %[2]d stones in a row horizontally, vertically or diagonally.

You are playing as '%[3]s'. The opponent is '%[4]s'. Empty intersections are '.'.

1. Win immediately if you can.
2. Otherwise block the opponent's lines of three or four.
3. Otherwise build your own lines or take the center.
Return 0-indexed row and col, a short strategic reasoning, and winRate between -1.0 (certain loss) and 1.0 (certain win).

You cannot place a stone on an occupied intersection.`,
		entity.BoardSize, entity.WinLength, player, player.Opponent())
}

func movePrompt(board *entity.Board, player entity.Cell) string {
	return fmt.Sprintf("Current board:\n%s\nYou are playing as %s. It is your turn. Respond in JSON with your move.",
		RenderBoard(board), player)
}

// extractJSONObject returns the first balanced {...} object in text, skipping code fences and prose.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]

		switch {
		case escaped:
			escaped = false
		case inString && ch == '\\':
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			depth++
		case ch == '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}
