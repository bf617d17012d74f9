// 版权所有 2024 AgentFlow Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 trailer 把角色/场景分解文档生成为预告片素材：每个角色一张参考图，
每个场景一段视频。

# 流程

  - LoadBreakdown / ParseBreakdown：读取 JSON 或 YAML 分解文档，
    在输入边界一次性校验。
  - CharacterReferenceGenerator：按输入顺序为每个角色生成参考图，
    写入 refs/<character_name>.png。
  - SceneVideoGenerator：按输入顺序处理场景，解析参考图、校验片段参数、
    生成首尾帧、调用视频服务，写入 scenes/scene_<NN>.mp4。
    第一个失败的场景会中止处理，并返回已完成的路径前缀和错误。
  - Pipeline：串起两个生成器，按 halt/skip 策略处理角色失败，
    最后写出 manifest.json。
  - Check：离线检查场景参数与角色引用，不发起任何网络请求。

全部工作严格顺序执行；素材先写临时文件再 rename，路径返回时文件已完整。
*/
package trailer
