// Package config 提供 trailerflow 的配置管理功能。
//
// 配置按 默认值 → YAML 文件 → TRAILERFLOW_* 环境变量 的顺序叠加，
// 最后用 credentials 回填为空的图像/视频 API Key。
package config
