package engine

import "PromptCraft/internal/prompt"

// State снимок состояния сессии. Меняется только методами Engine.
type State struct {
	UserInput          string             `json:"userInput"`
	DetailLevel        prompt.DetailLevel `json:"detailLevel"`
	SynthesizedPrompt  string             `json:"synthesizedPrompt"`
	FinalAnswer        string             `json:"finalAnswer"`
	AnswerTitle        string             `json:"answerTitle"`
	PendingSynthesis   bool               `json:"pendingSynthesis"`
	PendingAction      prompt.ActionID    `json:"pendingAction"`
	LastSynthesisError string             `json:"lastSynthesisError"`
	LastActionError    string             `json:"lastActionError"`
	Listening          bool               `json:"listening"`
	Speaking           bool               `json:"speaking"`
	Copied             bool               `json:"copied"`

	// Какие возможности подключены; презентер по ним прячет кнопки.
	CanSpeak  bool `json:"canSpeak"`
	CanListen bool `json:"canListen"`
}

// Сообщения для пользователя. Подробности ошибок уходят только в лог.
const (
	MsgEmptyInput           = "Please enter an idea to synthesize."
	MsgSynthesisFailed      = "Failed to synthesize prompt. Please try again."
	MsgSpeechUnsupported    = "Speech synthesis is not supported."
	MsgSpeechFailed         = "An error occurred during speech synthesis."
	MsgRecognitionUnsupport = "Speech recognition is not supported."
)

func actionFailed(id prompt.ActionID) string {
	return "Failed to " + string(id) + ". Please try again."
}

func recognitionFailed(code string) string {
	return "Speech recognition error: " + code
}
