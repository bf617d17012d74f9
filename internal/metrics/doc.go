// Copyright (c) TrailerFlow Authors.
// Licensed under the MIT License.

/*
包 metrics 提供基于 Prometheus 的生成流程指标采集。

# 概述

Collector 在构造时接收 prometheus.Registerer，测试与多次运行可以使用
各自独立的 Registry。所有指标按 namespace 隔离。

# 主要指标

  - provider_requests_total / provider_request_duration_seconds：
    图像、视频服务调用，按 provider/operation/status 分组。
  - video_poll_iterations：单个视频任务的轮询次数分布。
  - assets_written_total / asset_bytes_total：写入磁盘的素材，按 kind 分组。
  - scenes_total：场景结果，按 status（ok / validation / lookup / provider / error）分组。

nil *Collector 的所有方法都是空操作。
*/
package metrics
