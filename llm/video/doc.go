// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 video 提供基于 Google Veo 3.1 的视频片段生成适配器。

# 概述

一次生成分为三步：提交 predictLongRunning 任务、按固定间隔轮询任务状态、
任务完成后下载生成的视频字节。请求可带首帧、尾帧以及最多 3 张角色参考图。

# 核心类型

  - Provider：视频生成的统一抽象，包含 GenerateVideo() 与 Name()。
  - GenerateRequest：提示词、负向提示、首尾帧、时长与参考图。
  - VeoProvider：Veo REST 适配器，凭据在构造时绑定。
  - Job / JobState：远端任务在客户端侧的状态机
    （submitted → polling → ready | failed）。

# 校验

ValidateClip 是参考图约束的唯一实现：带参考图时时长必须为 8 秒，
参考图最多 3 张。GenerateVideo 在任何网络调用之前执行校验，
违反时返回 VALIDATION 错误，消息中包含实际值。

# 轮询

每次状态检查前等待 PollInterval，超过 MaxPollAttempts 次仍未完成则以
PROVIDER 错误结束。取消 context 只停止本地等待，远端任务不会被取消。
*/
package video
