// Package fuzztests houses Go fuzz harnesses that feed arbitrary bytes to the
// table reader and the checker. The goal is to guard against panics and
// hangs on malformed link inputs.
//
// Назначение: fuzz-обработчики поверх storage.Parse, odrtable.ReadTables и
// odrtable.Check.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/odrtable, internal/odrtable/storage.
package fuzztests
