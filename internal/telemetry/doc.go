// Package telemetry 封装 OpenTelemetry trace SDK 的初始化，
// 为一次生成运行提供 TracerProvider。
// 遥测禁用时保持全局 noop 实现，不连接任何外部服务。
package telemetry
