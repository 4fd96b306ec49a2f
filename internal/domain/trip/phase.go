package trip

// Phase 对话阶段
type Phase int

const (
	// PhaseProfiling 收集旅行信息，只提问
	PhaseProfiling Phase = 1
	// PhaseGenerate 生成行程
	PhaseGenerate Phase = 2
	// PhaseModify 修改已有行程
	PhaseModify Phase = 3
	// PhaseFileAnalysis 消息本身是文件分析结果
	PhaseFileAnalysis Phase = 4
)

// ResolvePhase 根据记忆和会话状态确定阶段
func ResolvePhase(memory TripMemory, hasItinerary, isFileAnalysis bool) Phase {
	if isFileAnalysis {
		return PhaseFileAnalysis
	}
	if memory.Ready() {
		if hasItinerary {
			return PhaseModify
		}
		return PhaseGenerate
	}
	return PhaseProfiling
}

// String 阶段名称
func (p Phase) String() string {
	switch p {
	case PhaseProfiling:
		return "profiling"
	case PhaseGenerate:
		return "generate"
	case PhaseModify:
		return "modify"
	case PhaseFileAnalysis:
		return "file_analysis"
	default:
		return "unknown"
	}
}
