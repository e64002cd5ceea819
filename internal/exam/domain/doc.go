// Package domain implements the exam-simulation core: question and session
// types, the session state machine, set-equality scoring onto the scaled
// [100,1000] range, and the historical session payload codec.
package domain
