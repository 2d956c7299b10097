/*
tze 包实现透明 zcash 扩展（TZE）输入与输出的两阶段构建。

# 概述

TZE 输出由一个前置条件守卫：扩展ID、模式和扩展自行定义的载荷。
花费这样的输出需要一个见证，见证同样携带扩展ID、模式和载荷。

见证载荷往往要对最终的交易结构做承诺（例如签名），而在添加输入的时候交易还没有确定，
因此构建分为两个阶段：

  - 第一阶段：调用 AddInput 与 AddOutput 累积输入和输出。每个输入附带一个 WitnessBuilder，
    它可以捕获当时已知的数据，但把依赖最终交易的计算推迟。
  - 第二阶段：外层交易构建器确定了全部交易组件之后，调用 CreateWitnesses，
    按输入顺序执行每个 WitnessBuilder，并检查返回的模式与声明的模式一致。

Build 在两个阶段之间返回未授权的捆绑包快照，Authorize 将第二阶段的结果附加到快照上。

# 错误

AddOutput 对负金额返回 ErrInvalidAmount。
CreateWitnesses 在模式不一致时返回 *WitnessModeMismatchError，见证计算本身的错误原样返回。
余额溢出不视为错误，ValueBalance 以 ok == false 表示余额未定义。
*/
package tze
