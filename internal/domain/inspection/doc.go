// Package inspection ядро проверки СИЗ: гейт позы, сверка рамок с зонами тела,
// сведение детекций по классам и решение о допуске.
//
// Пакет не делает ввода-вывода и не хранит глобального состояния: время приходит
// через timeutil.Clock, обязательные классы передаются явно.
package inspection
