package usecase

const ExportBatchSize = exportBatchSize
