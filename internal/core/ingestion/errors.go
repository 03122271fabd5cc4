package ingestion

import "errors"

var (
	// ErrDuplicateMessage は同一 externalMessageId のメッセージが既に保存済みであることを表す
	ErrDuplicateMessage = errors.New("message already ingested")

	// ErrMalformedMessage は本文・送信者・会話のいずれかが欠けたメッセージを表す
	ErrMalformedMessage = errors.New("malformed message")

	// ErrDispatcherOverloaded は取り込みワーカーが飽和し、投入を受け付けられないことを表す
	ErrDispatcherOverloaded = errors.New("ingestion dispatcher overloaded")
)
