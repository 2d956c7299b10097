package tze

// WitnessBuilder 延迟计算某个输入的见证
// 在添加输入时可以闭包捕获当时已知的数据，只把依赖最终交易结构的计算推迟到 BuildWitness。
type WitnessBuilder[C any] interface {
	BuildWitness(ctx C) (ToPayload, error)
}

// WitnessBuilderFunc 函数适配器，使普通函数满足 WitnessBuilder
type WitnessBuilderFunc[C any] func(ctx C) (ToPayload, error)

// BuildWitness 调用 f(ctx)
func (f WitnessBuilderFunc[C]) BuildWitness(ctx C) (ToPayload, error) {
	return f(ctx)
}

// signer 被消费的前一个输出，以及只调用一次的见证计算
type signer[C any] struct {
	prevout TzeOut
	build   func(ctx C) (uint32, []byte, error)
}

// pendingInput 未授权输入与其 signer 成对保存，索引天然对齐
type pendingInput[C any] struct {
	in     TzeIn[Unauthorized]
	signer signer[C]
}

// Builder 累积 TZE 输入和输出，并在最终交易结构确定后为每个输入生成授权数据
// C 是最终交易上下文的类型，由外层交易构建器决定。
// Builder 不是并发安全的，由单一调用方独占使用。
type Builder[C any] struct {
	inputs   []pendingInput[C]
	vout     []TzeOut
	consumed bool
}

// NewBuilder 创建一个空的构建器
func NewBuilder[C any]() *Builder[C] {
	return &Builder[C]{}
}

// AddInput 添加一个花费 prevout 的未授权输入
// 不在此处校验 extensionID 与 mode，模式在 CreateWitnesses 时与 wb 实际返回的模式比对。
func (b *Builder[C]) AddInput(extensionID, mode uint32, prevout OutPoint, coin TzeOut, wb WitnessBuilder[C]) {
	if b.consumed {
		panic("tze: AddInput called on a consumed Builder")
	}

	b.inputs = append(b.inputs, pendingInput[C]{
		in: NewTzeIn(prevout, extensionID, mode),
		signer: signer[C]{
			prevout: coin.clone(),
			build: func(ctx C) (uint32, []byte, error) {
				w, err := wb.BuildWitness(ctx)
				if err != nil {
					return 0, nil, err
				}
				if w == nil {
					return 0, nil, ErrNilWitness
				}
				mode, payload := w.ToPayload()
				return mode, payload, nil
			},
		},
	})
}

// AddOutput 添加一个由 guard 守卫的输出，value 为负数或超过 MaxMoney 时返回 ErrInvalidAmount 且不添加
func (b *Builder[C]) AddOutput(extensionID uint32, value Amount, guard ToPayload) error {
	if b.consumed {
		return ErrBuilderConsumed
	}
	if _, err := NonNegativeAmount(int64(value)); err != nil {
		return err
	}

	mode, payload := guard.ToPayload()
	b.vout = append(b.vout, TzeOut{
		Value: value,
		Precondition: Precondition{
			ExtensionID: extensionID,
			Mode:        mode,
			Payload:     append([]byte(nil), payload...),
		},
	})
	return nil
}

// ValueBalance 返回 (被消费输出金额之和) - (新输出金额之和)
// 任何一个和或者最后的减法超出金额范围时 ok 为 false，表示余额未定义而不是零。
func (b *Builder[C]) ValueBalance() (Amount, bool) {
	if b.consumed {
		return 0, false
	}

	spent := make([]Amount, len(b.inputs))
	for i, p := range b.inputs {
		spent[i] = p.signer.prevout.Value
	}
	created := make([]Amount, len(b.vout))
	for i, out := range b.vout {
		created[i] = out.Value
	}

	totalIn, ok := SumAmounts(spent...)
	if !ok {
		return 0, false
	}
	totalOut, ok := SumAmounts(created...)
	if !ok {
		return 0, false
	}
	return totalIn.Sub(totalOut)
}

// NumInputs 已添加的输入数量
func (b *Builder[C]) NumInputs() int {
	return len(b.inputs)
}

// NumOutputs 已添加的输出数量
func (b *Builder[C]) NumOutputs() int {
	return len(b.vout)
}

// Build 返回当前状态的未授权捆绑包快照，没有任何输入和输出时返回 nil
// 可以多次调用，不会修改构建器，每次返回独立的拷贝。
func (b *Builder[C]) Build() *Bundle[Unauthorized] {
	if b.consumed || (len(b.inputs) == 0 && len(b.vout) == 0) {
		return nil
	}

	bundle := &Bundle[Unauthorized]{
		Vin:  make([]TzeIn[Unauthorized], len(b.inputs)),
		Vout: make([]TzeOut, len(b.vout)),
	}
	for i, p := range b.inputs {
		bundle.Vin[i] = p.in
	}
	for i, out := range b.vout {
		bundle.Vout[i] = out.clone()
	}
	return bundle
}

// CreateWitnesses 按输入添加的顺序对每个输入执行见证计算，返回一一对应的授权数据
// 该调用会消费构建器。没有任何输入和输出时返回 nil, nil。
// 任何一个见证计算失败或返回的模式与声明的模式不一致时立即停止，不再调用后续的计算，也不返回部分结果。
func (b *Builder[C]) CreateWitnesses(ctx C) ([]AuthData, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	inputs, empty := b.inputs, len(b.inputs) == 0 && len(b.vout) == 0
	b.consumed = true
	b.inputs, b.vout = nil, nil

	if empty {
		return nil, nil
	}

	payloads := make([]AuthData, 0, len(inputs))
	for i, p := range inputs {
		// 见证构建函数在添加输入时已经捕获了所需的数据，这里只计算依赖最终交易的部分
		mode, payload, err := p.signer.build(ctx)
		if err != nil {
			return nil, err
		}
		if declared := p.in.Witness.Mode; mode != declared {
			return nil, &WitnessModeMismatchError{Index: i, Declared: declared, Resolved: mode}
		}
		payloads = append(payloads, AuthData(payload))
	}
	return payloads, nil
}
