// Copyright (c) TrailerFlow Authors.
// Licensed under the MIT License.

/*
Package types 提供 trailerflow 的全局共享错误类型。

# 概述

types 是最底层的公共包，不依赖任何内部包。trailer、llm/image、llm/video
通过同一个 *Error 报告失败，调用方按 ErrorCode 区分错误种类。

# 错误种类

  - ErrValidation：视频参数约束被违反（时长必须为 8 秒 / 参考图最多 3 张）
  - ErrLookup：场景引用了没有参考图的角色
  - ErrProvider：外部生成服务失败（网络、非 2xx、无负载、任务失败）
  - ErrInvalidInput：分镜输入文档解析或校验失败
  - ErrAssetIO：本地素材读写失败

IsValidation / IsLookup / IsProvider 基于 errors.As，包装后的错误依旧可识别。
*/
package types
