// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 image 提供文生图服务抽象，用于生成角色参考图与场景首尾帧。

# 核心接口

  - Provider：GenerateImage（提示词 → 图像字节）与 Name 两个方法。

# 服务商

  - OpenAIProvider：基于 openai-go SDK 调用 DALL-E 3
    （1024x1024、standard、n=1），支持 b64_json 与 url 两种返回，
    url 结果会再发起一次下载。SDK 自带重试已关闭。
  - GeminiProvider：基于 google.golang.org/genai 调用 Gemini 原生
    图像生成，返回第一段 inline 图像数据。

任何失败（网络错误、HTTP 状态 ≥ 400、响应中没有图像、下载失败）
都以 PROVIDER 错误返回，错误中带有服务商名与 HTTP 状态码。
*/
package image
