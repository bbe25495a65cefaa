package searcher

// Hyperparameters for MCTS

const DefaultSimulations = 10

const DefaultExploration = 0.5 // cpuct

// Keeps the exploration term of unvisited edges non-zero at a fresh state
const epsilon = 1e-8
