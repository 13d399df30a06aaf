package api

import "time"

// MsgType is a message type for streamed tournament events
type MsgType string

const (
	StartTournamentMsg  MsgType = "tournament_start"
	StartCompileMsg     MsgType = "compile_start"
	FinishCompileMsg    MsgType = "compile_finish"
	StartMatchMsg       MsgType = "match_start"
	FinishMatchMsg      MsgType = "match_finish"
	AbortMatchMsg       MsgType = "match_abort"
	FinishTournamentMsg MsgType = "tournament_finish"
)

// Compiler output size constraints for streaming
const (
	MaxCompileOutputHeight = 40
	MaxCompileOutputWidth  = 80
)

// Header is the common header for all streamed messages
type Header struct {
	TournamentUuid string  `json:"tournament_uuid"`
	MsgType        MsgType `json:"msg_type"`
}

// CompileData describes one toolchain run
type CompileData struct {
	Command    string `json:"cmd"`
	Output     string `json:"out"`
	Truncated  bool   `json:"truncated"`
	ExitCode   int64  `json:"exit"`
	WallMillis int64  `json:"wall_ms"`
}

type StartTournament struct {
	Header
	Entrants    []string `json:"entrants"`
	StartedTime string   `json:"started_time"`
}

type StartCompile struct {
	Header
	Strategy string `json:"strategy"`
	Language string `json:"lang"`
}

// FinishCompile is sent after every compilation. Success is false when no
// artifact was produced.
type FinishCompile struct {
	Header
	Strategy string       `json:"strategy"`
	Success  bool         `json:"success"`
	Data     *CompileData `json:"data"`
}

type StartMatch struct {
	Header
	MatchUuid string `json:"match_uuid"`
	First     string `json:"first"`
	Second    string `json:"second"`
}

type FinishMatch struct {
	Header
	MatchUuid   string `json:"match_uuid"`
	Iterations  int    `json:"iterations"`
	FirstScore  int    `json:"first_score"`
	SecondScore int    `json:"second_score"`
	WallMillis  int64  `json:"wall_ms"`
	// Transcript is the zstd-compressed choice sequence, see EncodeTranscript.
	Transcript []byte `json:"transcript"`
}

type AbortMatch struct {
	Header
	MatchUuid    string `json:"match_uuid"`
	ErrorMessage string `json:"error_message"`
	// ViolatingSide is 1 or 2 when a strategy broke the protocol.
	ViolatingSide *int `json:"violating_side"`
}

type Standing struct {
	Strategy   string  `json:"strategy"`
	Score      float64 `json:"score"`
	Matches    int     `json:"matches"`
	Aborted    int     `json:"aborted"`
	Violations int     `json:"violations"`
}

type FinishTournament struct {
	Header
	Standings    []Standing `json:"standings"`
	ErrorMessage *string    `json:"error_message"`
}

func NewHeader(tournamentUuid string, msgType MsgType) Header {
	return Header{
		TournamentUuid: tournamentUuid,
		MsgType:        msgType,
	}
}

func NewStartTournament(tournamentUuid string, entrants []string) StartTournament {
	return StartTournament{
		Header:      NewHeader(tournamentUuid, StartTournamentMsg),
		Entrants:    entrants,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewStartCompile(tournamentUuid, strategy, lang string) StartCompile {
	return StartCompile{
		Header:   NewHeader(tournamentUuid, StartCompileMsg),
		Strategy: strategy,
		Language: lang,
	}
}

func NewFinishCompile(tournamentUuid, strategy string, success bool, data *CompileData) FinishCompile {
	return FinishCompile{
		Header:   NewHeader(tournamentUuid, FinishCompileMsg),
		Strategy: strategy,
		Success:  success,
		Data:     data,
	}
}

func NewStartMatch(tournamentUuid, matchUuid, first, second string) StartMatch {
	return StartMatch{
		Header:    NewHeader(tournamentUuid, StartMatchMsg),
		MatchUuid: matchUuid,
		First:     first,
		Second:    second,
	}
}

func NewAbortMatch(tournamentUuid, matchUuid, errMsg string, violatingSide *int) AbortMatch {
	return AbortMatch{
		Header:        NewHeader(tournamentUuid, AbortMatchMsg),
		MatchUuid:     matchUuid,
		ErrorMessage:  errMsg,
		ViolatingSide: violatingSide,
	}
}

func NewFinishTournament(tournamentUuid string, standings []Standing, errMsg *string) FinishTournament {
	return FinishTournament{
		Header:       NewHeader(tournamentUuid, FinishTournamentMsg),
		Standings:    standings,
		ErrorMessage: errMsg,
	}
}
